package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"studentportal/internal/model"
	"studentportal/internal/repository"
	"studentportal/internal/validation"
)

// CreateUserInput is a registration request. Field order decides which
// format error is reported first.
type CreateUserInput struct {
	FirstName string `validate:"required,portal_name"`
	LastName  string `validate:"required,portal_name"`
	Email     string `validate:"required,portal_email"`
	Phone     string `validate:"required,portal_phone"`
	Password  string `validate:"required"`
}

func (in *CreateUserInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Password = strings.TrimSpace(in.Password)
}

type UserService struct {
	users    repository.UserRepository
	scheme   PasswordScheme
	validate *validator.Validate
	logger   *zap.Logger
}

func NewUserService(users repository.UserRepository, scheme PasswordScheme, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		scheme:   scheme,
		validate: validation.New(),
		logger:   logger,
	}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Create validates in and stores a new account. A missing field is reported
// before any format error.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.normalize()

	if err := s.validate.Struct(in); err != nil {
		return nil, inputError(err)
	}

	stored, err := s.scheme.Encode(in.Password)
	if err != nil {
		return nil, fmt.Errorf("encode password: %w", err)
	}

	u := &model.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Password:  stored,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("User account created", zap.Int("user_id", u.ID))
	return u, nil
}

// Delete removes the account only; its dashboard rows stay in storage.
func (s *UserService) Delete(ctx context.Context, id int) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	s.logger.Info("User account deleted", zap.Int("user_id", id))
	return nil
}

func inputError(err error) error {
	if validation.HasTag(err, "required") {
		return ErrFieldsRequired
	}
	field, _, ok := validation.FirstFailure(err)
	if !ok {
		return err
	}
	switch field {
	case "FirstName", "LastName":
		return ErrInvalidName
	case "Email":
		return ErrInvalidEmail
	case "Phone":
		return ErrInvalidPhone
	default:
		return ErrFieldsRequired
	}
}
