package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"propertystore/internal/cache"
	"propertystore/internal/events"
	"propertystore/internal/models"
	"propertystore/internal/pipeline"
	"propertystore/internal/realtime"
)

// analyticsPrefix — все ключи кэша аналитики, сбрасываются при любом изменении сделок.
const analyticsPrefix = "analytics:"

type DealService struct {
	Deals     DealStore
	Pipelines PipelineStore
	Clients   ClientStore
	Events    events.Publisher
	Board     Broadcaster
	Cache     cache.Cache
	Log       logrus.FieldLogger
	Now       func() time.Time
}

func NewDealService(deals DealStore, pipelines PipelineStore, clients ClientStore, pub events.Publisher, board Broadcaster, c cache.Cache, log logrus.FieldLogger) *DealService {
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	if board == nil {
		board = nopBroadcaster{}
	}
	return &DealService{
		Deals:     deals,
		Pipelines: pipelines,
		Clients:   clients,
		Events:    pub,
		Board:     board,
		Cache:     c,
		Log:       log,
		Now:       time.Now,
	}
}

func (s *DealService) stage(ctx context.Context, id string) (*models.DealStage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pipeline.ErrStageRequired
	}
	st, err := s.Pipelines.GetStage(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, invalid("этап %s не найден", id)
	}
	return st, nil
}

func (s *DealService) Create(ctx context.Context, req models.DealRequest) (*models.Deal, error) {
	st, err := s.stage(ctx, req.CurrentStageID)
	if err != nil {
		return nil, err
	}
	client, err := s.Clients.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, invalid("клиент %s не найден", req.ClientID)
	}

	deal, err := pipeline.NewDeal(req, *st, s.Now())
	if err != nil {
		return nil, err
	}
	if err := s.Deals.Create(ctx, deal); err != nil {
		return nil, err
	}
	deal.Client = client
	deal.CurrentStage = st

	s.Log.WithFields(logrus.Fields{"deal_id": deal.ID, "stage_id": st.ID}).Info("[deals][create] сделка создана")
	s.changed(ctx, events.TopicDealCreated, events.DealCreated{Deal: deal}, realtime.BoardMessage{
		Action: "created", DealID: deal.ID, PipelineID: deal.PipelineID, ToStage: deal.CurrentStageID,
	})
	return deal, nil
}

// Update меняет описательные поля сделки. Этап и статус меняются только через
// MoveStage/Close/Reopen.
func (s *DealService) Update(ctx context.Context, id string, req models.DealRequest) (*models.Deal, error) {
	deal, err := s.Deals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, notFound("сделка", id)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, pipeline.ErrTitleRequired
	}
	if req.ClientID != "" && req.ClientID != deal.ClientID {
		c, err := s.Clients.GetByID(ctx, req.ClientID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, invalid("клиент %s не найден", req.ClientID)
		}
		deal.ClientID = req.ClientID
	}
	deal.Title = title
	deal.Notes = req.Notes
	deal.DealAmount = req.DealAmount
	deal.ExpectedCloseDate = req.ExpectedCloseDate
	deal.PropertyID = req.PropertyID
	deal.UpdatedAt = s.Now()

	if err := s.Deals.Update(ctx, deal); err != nil {
		return nil, err
	}
	pipeline.RefreshOverdue(deal, s.Now())
	s.invalidate(ctx)
	return deal, nil
}

func (s *DealService) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	deal, err := s.Deals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, notFound("сделка", id)
	}
	pipeline.RefreshOverdue(deal, s.Now())
	return deal, nil
}

// GetWithDetails дополняет сделку клиентом, текущим этапом и историей переходов.
func (s *DealService) GetWithDetails(ctx context.Context, id string) (*models.Deal, error) {
	deal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal.Client, err = s.Clients.GetByID(ctx, deal.ClientID); err != nil {
		return nil, err
	}
	if deal.CurrentStage, err = s.Pipelines.GetStage(ctx, deal.CurrentStageID); err != nil {
		return nil, err
	}
	if deal.History, err = s.Deals.History(ctx, deal.ID); err != nil {
		return nil, err
	}
	if err := pipeline.ValidateHistory(*deal); err != nil {
		s.Log.WithField("deal_id", deal.ID).WithError(err).Warn("[deals][details] история не согласована с этапом")
	}
	return deal, nil
}

func (s *DealService) List(ctx context.Context, f models.DealFilter) ([]models.Deal, error) {
	deals, err := s.Deals.List(ctx, f)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	for i := range deals {
		pipeline.RefreshOverdue(&deals[i], now)
	}
	return deals, nil
}

func (s *DealService) ListActive(ctx context.Context) ([]models.Deal, error) {
	return s.List(ctx, models.DealFilter{ActiveOnly: true})
}

func (s *DealService) ListByPipeline(ctx context.Context, pipelineID string) ([]models.Deal, error) {
	return s.List(ctx, models.DealFilter{PipelineID: &pipelineID})
}

func (s *DealService) ListByClient(ctx context.Context, clientID string) ([]models.Deal, error) {
	return s.List(ctx, models.DealFilter{ClientID: &clientID})
}

func (s *DealService) ListOverdue(ctx context.Context) ([]models.Deal, error) {
	now := s.Now()
	deals, err := s.Deals.ListOverdue(ctx, now)
	if err != nil {
		return nil, err
	}
	for i := range deals {
		pipeline.RefreshOverdue(&deals[i], now)
	}
	return deals, nil
}

// MoveStage переводит сделку в этап stageID. Сделка блокируется в БД на время
// перехода, поэтому параллельные переходы одной сделки выполняются по очереди.
func (s *DealService) MoveStage(ctx context.Context, id, stageID string, note *string) (*models.Deal, error) {
	dest, err := s.stage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	var entry models.DealHistory
	deal, err := s.Deals.Transition(ctx, id, func(d *models.Deal) (*models.DealHistory, error) {
		h, err := pipeline.MoveStage(d, *dest, note, now)
		if err != nil {
			return nil, err
		}
		entry = h
		return &h, nil
	})
	if err != nil {
		return nil, s.transitionErr(id, err)
	}
	deal.CurrentStage = dest
	pipeline.RefreshOverdue(deal, now)

	s.Log.WithFields(logrus.Fields{
		"deal_id": id, "from": derefString(entry.FromStageID), "to": dest.ID,
	}).Info("[deals][move] этап изменён")
	s.changed(ctx, events.TopicDealMoved, events.DealMoved{DealID: id, PipelineID: deal.PipelineID, Transition: entry}, realtime.BoardMessage{
		Action: "moved", DealID: id, PipelineID: deal.PipelineID, FromStage: derefString(entry.FromStageID), ToStage: dest.ID,
	})
	return deal, nil
}

func (s *DealService) Close(ctx context.Context, id string) (*models.Deal, error) {
	now := s.Now()
	deal, err := s.Deals.Transition(ctx, id, func(d *models.Deal) (*models.DealHistory, error) {
		return nil, pipeline.Close(d, now)
	})
	if err != nil {
		return nil, s.transitionErr(id, err)
	}
	s.Log.WithField("deal_id", id).Info("[deals][close] сделка закрыта")
	s.changed(ctx, events.TopicDealClosed, events.DealClosed{Deal: deal}, realtime.BoardMessage{
		Action: "closed", DealID: id, PipelineID: deal.PipelineID, FromStage: deal.CurrentStageID,
	})
	return deal, nil
}

func (s *DealService) Reopen(ctx context.Context, id string) (*models.Deal, error) {
	now := s.Now()
	deal, err := s.Deals.Transition(ctx, id, func(d *models.Deal) (*models.DealHistory, error) {
		return nil, pipeline.Reopen(d, now)
	})
	if err != nil {
		return nil, s.transitionErr(id, err)
	}
	s.Log.WithField("deal_id", id).Info("[deals][reopen] сделка переоткрыта")
	s.changed(ctx, events.TopicDealReopened, events.DealReopened{Deal: deal}, realtime.BoardMessage{
		Action: "reopened", DealID: id, PipelineID: deal.PipelineID, ToStage: deal.CurrentStageID,
	})
	return deal, nil
}

func (s *DealService) Delete(ctx context.Context, id string) error {
	deal, err := s.Deals.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if deal == nil {
		return notFound("сделка", id)
	}
	if err := s.Deals.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, events.TopicDealDeleted, events.DealDeleted{DealID: id}, realtime.BoardMessage{
		Action: "deleted", DealID: id, PipelineID: deal.PipelineID, FromStage: deal.CurrentStageID,
	})
	return nil
}

func (s *DealService) transitionErr(id string, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrDealClosed), errors.Is(err, pipeline.ErrSameStage), errors.Is(err, pipeline.ErrDealActive):
		s.Log.WithField("deal_id", id).WithError(err).Info("[deals][transition] отклонено")
	}
	return fmt.Errorf("сделка %s: %w", id, err)
}

// changed публикует событие, пушит доску и сбрасывает кэш аналитики.
// Сбои шины и кэша не откатывают уже сохранённое изменение.
func (s *DealService) changed(ctx context.Context, topic string, event any, msg realtime.BoardMessage) {
	if err := s.Events.Publish(ctx, topic, event); err != nil {
		s.Log.WithError(err).WithField("topic", topic).Warn("[deals][events] publish failed")
	}
	s.Board.Broadcast(msg)
	s.invalidate(ctx)
}

func (s *DealService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.DeletePrefix(ctx, analyticsPrefix); err != nil {
		s.Log.WithError(err).Warn("[deals][cache] invalidate failed")
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
