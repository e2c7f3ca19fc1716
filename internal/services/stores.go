package services

import (
	"context"
	"time"

	"propertystore/internal/models"
	"propertystore/internal/realtime"
)

// Узкие интерфейсы хранилищ, которые нужны сервисам. Реализуются пакетом repositories.

type DealStore interface {
	Create(ctx context.Context, d *models.Deal) error
	CreateFromRequest(ctx context.Context, d *models.Deal, requestID string) error
	GetByID(ctx context.Context, id string) (*models.Deal, error)
	History(ctx context.Context, dealID string) ([]models.DealHistory, error)
	List(ctx context.Context, f models.DealFilter) ([]models.Deal, error)
	Update(ctx context.Context, d *models.Deal) error
	Transition(ctx context.Context, id string, mutate func(d *models.Deal) (*models.DealHistory, error)) (*models.Deal, error)
	Delete(ctx context.Context, id string) error
	ListOverdue(ctx context.Context, now time.Time) ([]models.Deal, error)
}

type PipelineStore interface {
	Create(ctx context.Context, p *models.Pipeline) error
	List(ctx context.Context) ([]models.Pipeline, error)
	GetByID(ctx context.Context, id string) (*models.Pipeline, error)
	ListStages(ctx context.Context, pipelineID string) ([]models.DealStage, error)
	GetStage(ctx context.Context, id string) (*models.DealStage, error)
	CreateStage(ctx context.Context, st *models.DealStage) error
}

type ClientStore interface {
	Create(ctx context.Context, c *models.Client) error
	Update(ctx context.Context, c *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
	GetByPhone(ctx context.Context, phone string) (*models.Client, error)
	List(ctx context.Context, limit, offset int) ([]models.Client, error)
	Delete(ctx context.Context, id string) error
	SetConsent(ctx context.Context, id string, consent bool) error
}

type RequestStore interface {
	Create(ctx context.Context, req *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context) ([]models.Request, error)
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.Request, error)
	ListByClient(ctx context.Context, clientID string) ([]models.Request, error)
	UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error
	Count(ctx context.Context) (int, error)
}

type PropertyStore interface {
	Create(ctx context.Context, p *models.Property) error
	Update(ctx context.Context, p *models.Property) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Property, error)
	List(ctx context.Context, f models.PropertyFilter) ([]models.Property, error)
	AddImage(ctx context.Context, propertyID string, img *models.PropertyImage) error
	DeleteImage(ctx context.Context, propertyID, imageID string) (string, error)
	SetMainImage(ctx context.Context, propertyID, imageID string) error
}

type AccountStore interface {
	Activate(ctx context.Context, a *models.ClientAccount) error
	GetByLogin(ctx context.Context, login string) (*models.ClientAccount, error)
	GetByClientID(ctx context.Context, clientID string) (*models.ClientAccount, error)
	UpdatePassword(ctx context.Context, clientID, hash string) error
	SaveConsent(ctx context.Context, clientID string, at time.Time, ip, userAgent string) error
}

type DocumentStore interface {
	Create(ctx context.Context, d *models.ClientDocument) error
	GetByID(ctx context.Context, id string) (*models.ClientDocument, error)
	ListByClient(ctx context.Context, clientID string, dealID *string) ([]models.ClientDocument, error)
	Delete(ctx context.Context, id string) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

type AnalyticsStore interface {
	PipelineSummary(ctx context.Context, pipelineID string) (*models.DealAnalytics, error)
	StageStats(ctx context.Context, pipelineID string, now time.Time) ([]models.DealStageAnalytics, error)
	PropertyTypes(ctx context.Context, pipelineID string) ([]models.PropertyTypeAnalytics, error)
}

// Broadcaster пушит изменения доски открытым клиентам.
type Broadcaster interface {
	Broadcast(msg realtime.BoardMessage)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(realtime.BoardMessage) {}
