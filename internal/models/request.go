package models

import "time"

type RequestType string

const (
	RequestConsultation RequestType = "consultation"
	RequestViewing      RequestType = "viewing"
	RequestCallback     RequestType = "callback"
)

func (t RequestType) Valid() bool {
	return t == RequestConsultation || t == RequestViewing || t == RequestCallback
}

type RequestStatus string

const (
	RequestNew        RequestStatus = "new"
	RequestInProgress RequestStatus = "in_progress"
	RequestCompleted  RequestStatus = "completed"
)

// Request — входящая заявка (консультация, просмотр, звонок).
type Request struct {
	ID         string        `json:"id"`
	ClientID   string        `json:"clientId"`
	PropertyID *string       `json:"propertyId,omitempty"`
	Type       RequestType   `json:"type"`
	Status     RequestStatus `json:"status"`
	Message    string        `json:"message"`
	CreatedAt  time.Time     `json:"createdAt"`
	Client     *Client       `json:"client,omitempty"`
}

// RequestRequest — публичная форма заявки с сайта.
type RequestRequest struct {
	PropertyID  *string      `json:"propertyId,omitempty"`
	Type        RequestType  `json:"type" binding:"required"`
	Message     string       `json:"message"`
	ClientName  string       `json:"clientName" binding:"required"`
	ClientPhone string       `json:"clientPhone" binding:"required"`
	ClientEmail *string      `json:"clientEmail,omitempty"`
	Source      ClientSource `json:"source"`
}

// RequestMessage — структурированное содержимое Message, если оно в JSON.
type RequestMessage struct {
	Name          string `json:"name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Purpose       string `json:"purpose,omitempty"`
	PropertyID    string `json:"propertyId,omitempty"`
	PreferredDate string `json:"preferredDate,omitempty"`
	Message       string `json:"message,omitempty"`
}

// PromoteRequest — параметры создания сделки из заявки.
type PromoteRequest struct {
	Title          string   `json:"title"`
	PipelineID     string   `json:"pipelineId" binding:"required"`
	CurrentStageID string   `json:"currentStageId" binding:"required"`
	DealAmount     *float64 `json:"dealAmount,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}
