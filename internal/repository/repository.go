// Package repository defines the storage contracts of the portal. Implementations
// live in the postgres and memory subpackages.
package repository

import (
	"context"
	"errors"

	"studentportal/internal/model"
)

var (
	// ErrNotFound no row matched.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail the email is already registered.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository stores portal accounts.
type UserRepository interface {
	// List returns every user ordered by id.
	List(ctx context.Context) ([]model.User, error)
	// Create inserts u and sets its ID and RegistrationDate. Returns ErrDuplicateEmail on conflict.
	Create(ctx context.Context, u *model.User) error
	// FindByEmail returns ErrNotFound when no user has email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByID returns ErrNotFound when no user has id.
	FindByID(ctx context.Context, id int) (*model.User, error)
	// First returns the lowest-id user, or ErrNotFound when the table is empty.
	First(ctx context.Context) (*model.User, error)
	// Delete removes the user. Returns ErrNotFound when no row matched. Child rows are kept.
	Delete(ctx context.Context, id int) error
}

// DashboardReader loads every dashboard widget for one user from a single consistent read.
type DashboardReader interface {
	LoadDashboard(ctx context.Context, userID int) (*model.DashboardRows, error)
}

// ScoreRepository reads the score activity series.
type ScoreRepository interface {
	// ListScores returns up to limit points for (userID, subject) ordered by date ascending.
	ListScores(ctx context.Context, userID int, subject string, limit int) ([]model.ScorePoint, error)
}

// ForumRepository stores doubt forum queries and answers.
type ForumRepository interface {
	// CreateQuery inserts q and sets its ID and CreatedAt.
	CreateQuery(ctx context.Context, q *model.Query) error
	// QueryExists reports whether a query with id exists.
	QueryExists(ctx context.Context, id int) (bool, error)
	// AddAnswer inserts a and sets its ID and CreatedAt as stored.
	AddAnswer(ctx context.Context, a *model.Answer) error
	// ListQueries returns every query, newest first.
	ListQueries(ctx context.Context) ([]model.Query, error)
	// ListAnswers returns every answer, oldest first.
	ListAnswers(ctx context.Context) ([]model.Answer, error)
}

// SeedWriter is the write side used by the fixture seeder.
type SeedWriter interface {
	// ResetSchema drops and recreates every table.
	ResetSchema(ctx context.Context) error
	// EnsureSchema creates missing tables; existing data is kept.
	EnsureSchema(ctx context.Context) error
	// InsertUserIgnore inserts u unless its email exists, and returns the id of the stored row either way.
	InsertUserIgnore(ctx context.Context, u *model.User) (int, error)
	InsertAttendance(ctx context.Context, a model.Attendance) error
	InsertNote(ctx context.Context, n model.Note) error
	InsertSubject(ctx context.Context, s model.Subject) error
	InsertScorePoint(ctx context.Context, p model.ScorePoint) error
	InsertTimetableEntry(ctx context.Context, e model.TimetableEntry) error
	InsertTestScore(ctx context.Context, s model.TestScore) error
	InsertNotice(ctx context.Context, n model.Notice) error
	// InsertPoll returns the generated poll id for the participant rows.
	InsertPoll(ctx context.Context, p model.Poll) (int, error)
	InsertPollParticipant(ctx context.Context, p model.PollParticipant) error
	InsertUpcomingTask(ctx context.Context, t model.UpcomingTask) error
}

// TxRunner runs fn so that the writes it makes through ctx commit or roll back together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles every repository backed by one storage engine.
type Store interface {
	TxRunner
	Users() UserRepository
	Dashboard() DashboardReader
	Scores() ScoreRepository
	Forum() ForumRepository
	Seed() SeedWriter
	Ping(ctx context.Context) error
	Close()
}
