package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"propertystore/internal/authz"
	"propertystore/internal/models"
)

type UserService struct {
	Repo UserStore
	Log  logrus.FieldLogger
}

func NewUserService(repo UserStore, log logrus.FieldLogger) *UserService {
	return &UserService{Repo: repo, Log: log}
}

func (s *UserService) Create(ctx context.Context, username, plainPassword, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username is required")
	}
	if len(plainPassword) < minPasswordLen {
		return nil, invalid("password must be at least %d characters", minPasswordLen)
	}
	if !authz.IsStaff(role) {
		return nil, invalid("unknown role %q", role)
	}
	existing, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: пользователь %s уже существует", ErrConflict, username)
	}
	hash, err := HashPassword(plainPassword)
	if err != nil {
		return nil, err
	}
	u := &models.User{ID: uuid.NewString(), Username: username, PasswordHash: hash, Role: role, CreatedAt: time.Now()}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin создаёт первого риелтора, если пользователей ещё нет.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	n, err := s.Repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.Create(ctx, username, password, authz.RoleAdmin); err != nil {
		return err
	}
	s.Log.WithField("username", username).Info("[auth][bootstrap] создан администратор")
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("пользователь", id)
	}
	return u, nil
}
