package events

import (
	"context"

	"propertystore/internal/models"
)

const (
	TopicDealCreated  = "deals.deal.created"
	TopicDealMoved    = "deals.deal.moved"
	TopicDealClosed   = "deals.deal.closed"
	TopicDealReopened = "deals.deal.reopened"
	TopicDealDeleted  = "deals.deal.deleted"

	TopicRequestCreated  = "deals.request.created"
	TopicRequestPromoted = "deals.request.promoted"
)

type DealCreated struct {
	Deal *models.Deal `json:"deal"`
}

type DealMoved struct {
	DealID     string             `json:"dealId"`
	PipelineID string             `json:"pipelineId"`
	Transition models.DealHistory `json:"transition"`
}

type DealClosed struct {
	Deal *models.Deal `json:"deal"`
}

type DealReopened struct {
	Deal *models.Deal `json:"deal"`
}

type DealDeleted struct {
	DealID string `json:"dealId"`
}

type RequestCreated struct {
	Request *models.Request `json:"request"`
}

type RequestPromoted struct {
	RequestID string `json:"requestId"`
	DealID    string `json:"dealId"`
}

// Publisher sends domain events to a message bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
