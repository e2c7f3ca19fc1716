package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"propertystore/internal/authz"
	"propertystore/internal/models"
)

const minPasswordLen = 6

func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func CheckPassword(hash, plain string) bool {
	ph := strings.TrimSpace(hash)
	if ph == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(ph), []byte(plain)) == nil
}

// AuthService выдаёт токены риелторам.
type AuthService struct {
	Users  UserStore
	Tokens *authz.Tokens
	TTL    time.Duration
	Log    logrus.FieldLogger
}

func NewAuthService(users UserStore, tokens *authz.Tokens, ttl time.Duration, log logrus.FieldLogger) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, TTL: ttl, Log: log}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	username = strings.TrimSpace(username)
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		s.Log.WithField("username", username).Info("[auth][login] неверный логин или пароль")
		return nil, ErrUnauthorized
	}
	token, exp, err := s.Tokens.Issue(user.ID, user.Role, user.Username, s.TTL)
	if err != nil {
		return nil, err
	}
	s.Log.WithField("user_id", user.ID).Info("[auth][login] success")
	return &models.AuthResponse{Token: token, Username: user.Username, Role: user.Role, Expires: exp}, nil
}
