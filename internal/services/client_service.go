package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"propertystore/internal/models"
)

type ClientService struct {
	Repo ClientStore
	Now  func() time.Time
}

func NewClientService(repo ClientStore) *ClientService {
	return &ClientService{Repo: repo, Now: time.Now}
}

func validateClient(in models.ClientRequest) (models.ClientSource, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", invalid("name is required")
	}
	if normalizePhone(in.Phone) == "" {
		return "", invalid("phone is required")
	}
	src := in.Source
	if src == "" {
		src = models.SourceWebsite
	}
	if !src.Valid() {
		return "", invalid("unknown source %q", src)
	}
	return src, nil
}

func (s *ClientService) Create(ctx context.Context, in models.ClientRequest) (*models.Client, error) {
	src, err := validateClient(in)
	if err != nil {
		return nil, err
	}
	c := &models.Client{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Phone:     normalizePhone(in.Phone),
		Email:     in.Email,
		Source:    src,
		Notes:     in.Notes,
		CreatedAt: s.Now(),
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientService) Update(ctx context.Context, id string, in models.ClientRequest) (*models.Client, error) {
	src, err := validateClient(in)
	if err != nil {
		return nil, err
	}
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Phone = normalizePhone(in.Phone)
	c.Email = in.Email
	c.Source = src
	c.Notes = in.Notes
	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientService) GetByID(ctx context.Context, id string) (*models.Client, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("клиент", id)
	}
	return c, nil
}

func (s *ClientService) List(ctx context.Context, limit, offset int) ([]models.Client, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, limit, offset)
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
