package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"propertystore/internal/authz"
	"propertystore/internal/models"
)

// PortalService — личный кабинет клиента: вход, смена пароля, согласия и
// просмотр своих сделок.
type PortalService struct {
	Accounts AccountStore
	Clients  ClientStore
	Deals    *DealService
	Tokens   *authz.Tokens
	TTL      time.Duration
	Notifier Notifier
	Log      logrus.FieldLogger
	Now      func() time.Time
}

func NewPortalService(accounts AccountStore, clients ClientStore, deals *DealService, tokens *authz.Tokens, ttl time.Duration, notifier Notifier, log logrus.FieldLogger) *PortalService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PortalService{
		Accounts: accounts, Clients: clients, Deals: deals, Tokens: tokens, TTL: ttl,
		Notifier: notifier, Log: log, Now: time.Now,
	}
}

// Activate открывает клиенту кабинет с временным паролем. Логин — телефон клиента.
func (s *PortalService) Activate(ctx context.Context, clientID, tempPassword string) (*models.ClientAccount, error) {
	if len(tempPassword) < minPasswordLen {
		return nil, invalid("password must be at least %d characters", minPasswordLen)
	}
	client, err := s.Clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, notFound("клиент", clientID)
	}
	hash, err := HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}
	acc := &models.ClientAccount{
		ClientID:           client.ID,
		Login:              client.Phone,
		PasswordHash:       hash,
		IsActive:           true,
		MustChangePassword: true,
		CreatedAt:          s.Now(),
	}
	if err := s.Accounts.Activate(ctx, acc); err != nil {
		return nil, err
	}
	if err := s.Notifier.AccountActivated(ctx, client, acc.Login, tempPassword); err != nil {
		s.Log.WithError(err).WithField("client_id", clientID).Warn("[portal][activate] письмо не отправлено")
	}
	s.Log.WithField("client_id", clientID).Info("[portal][activate] кабинет активирован")
	return acc, nil
}

func (s *PortalService) Login(ctx context.Context, login, password string) (*models.ClientAuthResponse, error) {
	acc, err := s.Accounts.GetByLogin(ctx, normalizePhone(login))
	if err != nil {
		return nil, err
	}
	if acc == nil || !acc.IsActive || !CheckPassword(acc.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	client, err := s.Clients.GetByID(ctx, acc.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrUnauthorized
	}
	token, exp, err := s.Tokens.Issue(client.ID, authz.RoleClient, client.Name, s.TTL)
	if err != nil {
		return nil, err
	}
	return &models.ClientAuthResponse{Token: token, ClientName: client.Name, Expires: exp}, nil
}

func (s *PortalService) ChangePassword(ctx context.Context, clientID, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return invalid("password must be at least %d characters", minPasswordLen)
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Accounts.UpdatePassword(ctx, clientID, hash)
}

// Consent сохраняет согласие на обработку персональных данных. IP и User-Agent
// берутся из запроса, если клиент их не передал.
func (s *PortalService) Consent(ctx context.Context, clientID string, in models.ConsentRequest, ip, userAgent string) error {
	if !in.AcceptPersonalData || !in.AcceptDocumentStorage {
		return invalid("необходимо принять оба согласия")
	}
	if in.IPAddress != "" {
		ip = in.IPAddress
	}
	if in.UserAgent != "" {
		userAgent = in.UserAgent
	}
	if err := s.Accounts.SaveConsent(ctx, clientID, s.Now(), ip, userAgent); err != nil {
		return err
	}
	return s.Clients.SetConsent(ctx, clientID, true)
}

func (s *PortalService) Profile(ctx context.Context, clientID string) (*models.Client, error) {
	c, err := s.Clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("клиент", clientID)
	}
	return c, nil
}

func (s *PortalService) ListDeals(ctx context.Context, clientID string) ([]models.Deal, error) {
	return s.Deals.ListByClient(ctx, clientID)
}

// Deal отдаёт сделку только её клиенту. Чужая сделка выглядит как отсутствующая.
func (s *PortalService) Deal(ctx context.Context, clientID, dealID string) (*models.Deal, error) {
	d, err := s.Deals.GetWithDetails(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if d.ClientID != clientID {
		return nil, notFound("сделка", dealID)
	}
	return d, nil
}
