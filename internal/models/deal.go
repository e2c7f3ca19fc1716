package models

import (
	"time"
)

// Deal — сделка, проходящая по этапам воронки.
type Deal struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Notes             *string    `json:"notes,omitempty"`
	DealAmount        *float64   `json:"dealAmount,omitempty"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	ClientID          string     `json:"clientId"`
	PipelineID        string     `json:"pipelineId"`
	CurrentStageID    string     `json:"currentStageId"`
	PropertyID        *string    `json:"propertyId,omitempty"`
	RequestID         *string    `json:"requestId,omitempty"`
	StageStartedAt    time.Time  `json:"stageStartedAt"`
	StageDeadline     *time.Time `json:"stageDeadline,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	ClosedAt          *time.Time `json:"closedAt,omitempty"`
	IsActive          bool       `json:"isActive"`
	IsOverdue         bool       `json:"isOverdue"`

	// заполняются при чтении с деталями
	Client       *Client       `json:"client,omitempty"`
	CurrentStage *DealStage    `json:"currentStage,omitempty"`
	History      []DealHistory `json:"history"`
}

// DealHistory — запись о переходе между этапами. FromStageID == nil означает создание сделки.
type DealHistory struct {
	ID          string    `json:"id"`
	DealID      string    `json:"dealId"`
	FromStageID *string   `json:"fromStageId"`
	ToStageID   string    `json:"toStageId"`
	ChangedAt   time.Time `json:"changedAt"`
	Notes       *string   `json:"notes,omitempty"`
}

// DealRequest — тело создания/обновления сделки.
type DealRequest struct {
	Title             string     `json:"title" binding:"required"`
	ClientID          string     `json:"clientId" binding:"required"`
	PipelineID        string     `json:"pipelineId" binding:"required"`
	CurrentStageID    string     `json:"currentStageId" binding:"required"`
	PropertyID        *string    `json:"propertyId,omitempty"`
	RequestID         *string    `json:"requestId,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	DealAmount        *float64   `json:"dealAmount,omitempty"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
}

type MoveDealStageRequest struct {
	NewStageID string  `json:"newStageId" binding:"required"`
	Notes      *string `json:"notes,omitempty"`
}

// DealFilter — параметры выборки сделок на стороне БД.
type DealFilter struct {
	PipelineID  *string
	ClientID    *string
	StageID     *string
	ActiveOnly  bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}
