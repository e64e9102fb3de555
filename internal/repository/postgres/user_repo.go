package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studentportal/internal/model"
	"studentportal/internal/repository"
)

const userColumns = `id, first_name, last_name, email_address, phone_number, password, registration_date`

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// List returns every user ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := observe(ctx, "select", "users", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
		if err != nil {
			return err
		}
		users, err = collect(rows, func(row pgx.Rows) (model.User, error) { return scanUser(row) })
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create inserts u and fills ID and RegistrationDate from the stored row.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (first_name, last_name, email_address, phone_number, password)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, registration_date
    `
	err := observe(ctx, "insert", "users", func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query, u.FirstName, u.LastName, u.Email, u.Phone, u.Password).
			Scan(&u.ID, &u.RegistrationDate)
	})
	if isUniqueViolation(err) {
		return repository.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	r.logger.Debug("User created", zap.Int("user_id", u.ID))
	return nil
}

// FindByEmail returns the user registered with email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email_address = $1`, email)
}

// FindByID returns the user with id.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// First returns the lowest-id user.
func (r *UserRepository) First(ctx context.Context) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT 1`)
}

// Delete removes the user row only; rows in the per-user tables stay behind.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	var affected int64
	err := observe(ctx, "delete", "users", func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	var u model.User
	err := observe(ctx, "select", "users", func(ctx context.Context) error {
		var err error
		u, err = scanUser(r.db.QueryRow(ctx, query, args...))
		return err
	})
	if isNoRows(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Password, &u.RegistrationDate)
	return u, err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
