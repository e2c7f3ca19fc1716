package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"propertystore/internal/events"
	"propertystore/internal/models"
	"propertystore/internal/pipeline"
	"propertystore/internal/realtime"
	"propertystore/internal/repositories"
)

type RequestService struct {
	Repo     RequestStore
	Clients  ClientStore
	Deals    *DealService
	Notifier Notifier
	Log      logrus.FieldLogger
	Now      func() time.Time
}

func NewRequestService(repo RequestStore, clients ClientStore, deals *DealService, notifier Notifier, log logrus.FieldLogger) *RequestService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RequestService{Repo: repo, Clients: clients, Deals: deals, Notifier: notifier, Log: log, Now: time.Now}
}

// ParseMessage разбирает структурированное сообщение заявки. Если текст не JSON,
// он целиком возвращается в поле Message.
func ParseMessage(raw string) models.RequestMessage {
	var m models.RequestMessage
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") && json.Unmarshal([]byte(trimmed), &m) == nil {
		return m
	}
	return models.RequestMessage{Message: raw}
}

func normalizePhone(p string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(p) {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Create принимает заявку с сайта. Клиент ищется по телефону и создаётся, если его нет.
func (s *RequestService) Create(ctx context.Context, in models.RequestRequest) (*models.Request, error) {
	if !in.Type.Valid() {
		return nil, invalid("неизвестный тип заявки %q", in.Type)
	}
	name := strings.TrimSpace(in.ClientName)
	phone := normalizePhone(in.ClientPhone)
	if name == "" || phone == "" {
		return nil, invalid("имя и телефон обязательны")
	}
	source := in.Source
	if source == "" {
		source = models.SourceWebsite
	}
	if !source.Valid() {
		return nil, invalid("неизвестный источник %q", source)
	}

	now := s.Now()
	client, err := s.Clients.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &models.Client{
			ID:        uuid.NewString(),
			Name:      name,
			Phone:     phone,
			Email:     in.ClientEmail,
			Source:    source,
			CreatedAt: now,
		}
		if err := s.Clients.Create(ctx, client); err != nil {
			return nil, err
		}
		s.Log.WithField("client_id", client.ID).Info("[requests][create] новый клиент")
	}

	msg := ParseMessage(in.Message)
	if msg.Name == "" {
		msg.Name = name
	}
	if msg.Phone == "" {
		msg.Phone = phone
	}
	if msg.Email == "" && in.ClientEmail != nil {
		msg.Email = *in.ClientEmail
	}
	if msg.PropertyID == "" && in.PropertyID != nil {
		msg.PropertyID = *in.PropertyID
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("сообщение заявки: %w", err)
	}

	req := &models.Request{
		ID:         uuid.NewString(),
		ClientID:   client.ID,
		PropertyID: in.PropertyID,
		Type:       in.Type,
		Status:     models.RequestNew,
		Message:    string(raw),
		CreatedAt:  now,
		Client:     client,
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		return nil, err
	}

	if err := s.Deals.Events.Publish(ctx, events.TopicRequestCreated, events.RequestCreated{Request: req}); err != nil {
		s.Log.WithError(err).Warn("[requests][events] publish failed")
	}
	if err := s.Notifier.NewRequest(ctx, req); err != nil {
		s.Log.WithError(err).WithField("request_id", req.ID).Warn("[requests][notify] уведомление не отправлено")
	}
	s.Deals.invalidate(ctx)
	return req, nil
}

func (s *RequestService) GetByID(ctx context.Context, id string) (*models.Request, error) {
	req, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, notFound("заявка", id)
	}
	return req, nil
}

func (s *RequestService) List(ctx context.Context) ([]models.Request, error) {
	return s.Repo.List(ctx)
}

func (s *RequestService) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.Request, error) {
	if _, ok := RequestTransitions[status]; !ok {
		return nil, invalid("неизвестный статус %q", status)
	}
	return s.Repo.ListByStatus(ctx, status)
}

func (s *RequestService) ListByClient(ctx context.Context, clientID string) ([]models.Request, error) {
	return s.Repo.ListByClient(ctx, clientID)
}

func (s *RequestService) UpdateStatus(ctx context.Context, id string, to models.RequestStatus) error {
	if _, ok := RequestTransitions[to]; !ok {
		return invalid("неизвестный статус %q", to)
	}
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.Status == to {
		return nil
	}
	if !canTransition(req.Status, to) {
		return fmt.Errorf("%w: переход %s -> %s запрещён", ErrConflict, req.Status, to)
	}
	if err := s.Repo.UpdateStatus(ctx, id, to); err != nil {
		return err
	}
	s.Deals.invalidate(ctx)
	return nil
}

// Promote создаёт сделку из заявки и закрывает заявку в одной транзакции.
func (s *RequestService) Promote(ctx context.Context, id string, in models.PromoteRequest) (*models.Deal, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == models.RequestCompleted {
		return nil, fmt.Errorf("%w: заявка %s уже обработана", ErrConflict, id)
	}
	st, err := s.Deals.stage(ctx, in.CurrentStageID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		name := ""
		if req.Client != nil {
			name = req.Client.Name
		}
		title = strings.TrimSpace("Заявка: " + name)
	}
	notes := in.Notes
	if notes == nil {
		if m := ParseMessage(req.Message).Message; m != "" {
			notes = &m
		}
	}
	deal, err := pipeline.NewDeal(models.DealRequest{
		Title:          title,
		ClientID:       req.ClientID,
		PipelineID:     in.PipelineID,
		CurrentStageID: in.CurrentStageID,
		PropertyID:     req.PropertyID,
		RequestID:      &req.ID,
		Notes:          notes,
		DealAmount:     in.DealAmount,
	}, *st, s.Now())
	if err != nil {
		return nil, err
	}

	if err := s.Deals.Deals.CreateFromRequest(ctx, deal, id); err != nil {
		if errors.Is(err, repositories.ErrRequestCompleted) {
			return nil, fmt.Errorf("%w: заявка %s уже обработана", ErrConflict, id)
		}
		return nil, err
	}
	deal.CurrentStage = st
	deal.Client = req.Client

	s.Log.WithFields(logrus.Fields{"request_id": id, "deal_id": deal.ID}).Info("[requests][promote] заявка переведена в сделку")
	if err := s.Deals.Events.Publish(ctx, events.TopicRequestPromoted, events.RequestPromoted{RequestID: id, DealID: deal.ID}); err != nil {
		s.Log.WithError(err).Warn("[requests][events] publish failed")
	}
	s.Deals.changed(ctx, events.TopicDealCreated, events.DealCreated{Deal: deal}, realtime.BoardMessage{
		Action: "created", DealID: deal.ID, PipelineID: deal.PipelineID, ToStage: deal.CurrentStageID,
	})
	return deal, nil
}
