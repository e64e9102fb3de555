// Package postgres implements the repository contracts on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studentportal/internal/repository"
	portaldb "studentportal/pkg/db"
	"studentportal/pkg/metrics"
	"studentportal/pkg/otel"
)

const uniqueViolation = "23505"

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL-backed repository.Store.
type Store struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStore(db *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) Users() repository.UserRepository      { return NewUserRepository(s.db, s.logger) }
func (s *Store) Dashboard() repository.DashboardReader { return NewDashboardRepository(s.db, s.logger) }
func (s *Store) Scores() repository.ScoreRepository    { return NewScoreRepository(s.db, s.logger) }
func (s *Store) Forum() repository.ForumRepository     { return NewForumRepository(s.db, s.logger) }
func (s *Store) Seed() repository.SeedWriter           { return NewSeedWriter(s.db, s.logger) }

// RunInTx makes the forum writes inside fn one transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return portaldb.RunInTx(ctx, s.db, fn)
}

func (s *Store) Ping(ctx context.Context) error { return s.db.Ping(ctx) }
func (s *Store) Close()                         { s.db.Close() }

// observe wraps one repository operation with a span and a latency observation.
func observe(ctx context.Context, operation, table string, fn func(context.Context) error) error {
	start := time.Now()
	err := otel.Traced(ctx, operation, table, fn)
	metrics.RecordDBQueryDuration(operation, table, time.Since(start))
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
