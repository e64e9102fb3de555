package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"studentportal/internal/model"
	"studentportal/internal/repository"
)

// CurrentUserResolver decides whose data a dashboard-style request shows.
type CurrentUserResolver struct {
	users    repository.UserRepository
	sessions *SessionIssuer
	logger   *zap.Logger
}

func NewCurrentUserResolver(users repository.UserRepository, sessions *SessionIssuer, logger *zap.Logger) *CurrentUserResolver {
	return &CurrentUserResolver{users: users, sessions: sessions, logger: logger}
}

// Resolve returns the user named by a valid session token, otherwise the
// lowest-id user. ErrNoUsers means the users table is empty.
func (r *CurrentUserResolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token != "" {
		if u := r.fromSession(ctx, token); u != nil {
			return u, nil
		}
	}

	u, err := r.users.First(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoUsers
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *CurrentUserResolver) fromSession(ctx context.Context, token string) *model.User {
	id, err := r.sessions.Parse(token)
	if err != nil {
		r.logger.Debug("Ignoring invalid session token", zap.Error(err))
		return nil
	}
	u, err := r.users.FindByID(ctx, id)
	if err != nil {
		// deleted since the token was issued
		r.logger.Debug("Session user unavailable", zap.Int("user_id", id), zap.Error(err))
		return nil
	}
	return u
}
