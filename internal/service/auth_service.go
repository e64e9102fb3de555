package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"studentportal/internal/model"
	"studentportal/internal/repository"
	"studentportal/internal/validation"
	"studentportal/pkg/metrics"
)

// AuthResult is a successful login.
type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users    repository.UserRepository
	scheme   PasswordScheme
	sessions *SessionIssuer
	logger   *zap.Logger
}

func NewAuthService(users repository.UserRepository, scheme PasswordScheme, sessions *SessionIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, scheme: scheme, sessions: sessions, logger: logger}
}

// Authenticate checks credentials and issues a session token.
//
// A failed login tells the caller whether the email is registered: ErrPasswordMismatch
// when it is, ErrAccountNotFound when it is not.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		metrics.IncrementAuthAttempt("invalid_input")
		return nil, ErrCredentialsRequired
	}
	if !validation.ValidEmail(email) {
		metrics.IncrementAuthAttempt("invalid_input")
		return nil, ErrInvalidEmail
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.IncrementAuthAttempt("unknown_account")
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.scheme.Verify(u.Password, password) {
		metrics.IncrementAuthAttempt("password_mismatch")
		return nil, ErrPasswordMismatch
	}

	token, exp, err := s.sessions.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	metrics.IncrementAuthAttempt("success")
	s.logger.Info("User authenticated", zap.Int("user_id", u.ID))
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}
