package outbox

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentportal/pkg/db"
	"studentportal/pkg/trace"
)

type queryEvent struct {
	QueryID int `json:"query_id"`
}

func (e queryEvent) AggregateKey() int64 { return int64(e.QueryID) }

// openTestRepo connects to PORTAL_TEST_DATABASE_URL with a fresh outbox table.
func openTestRepo(t *testing.T) (*Repository, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("PORTAL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PORTAL_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS outbox_events`)
	require.NoError(t, err)

	repo := NewRepository(pool)
	require.NoError(t, repo.EnsureTable(ctx))
	require.NoError(t, repo.EnsureTable(ctx))
	return repo, pool
}

func TestWriterJoinsTransaction(t *testing.T) {
	repo, pool := openTestRepo(t)
	ctx := context.Background()
	w := NewWriter(repo, "forum")

	err := db.RunInTx(ctx, pool, func(ctx context.Context) error {
		require.NoError(t, w.Publish(ctx, "forum.answer.added", queryEvent{QueryID: 3}))
		return errors.New("answer insert failed")
	})
	require.Error(t, err)
	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, db.RunInTx(ctx, pool, func(ctx context.Context) error {
		return w.Publish(ctx, "forum.answer.added", queryEvent{QueryID: 3})
	}))
	pending, err = repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].AggregateID)
	assert.Equal(t, int64(3), *pending[0].AggregateID)
}

func TestRepositoryAgainstPostgres(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	w := NewWriter(repo, "forum")
	require.NoError(t, w.Publish(trace.WithContext(ctx, "trace-1"), "forum.query.raised", map[string]int{"query_id": 1}))

	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	e := pending[0]
	assert.Equal(t, "forum", e.AggregateType)
	assert.Equal(t, "trace-1", e.TraceID)
	assert.JSONEq(t, `{"query_id":1}`, string(e.Payload))
	assert.Nil(t, e.AggregateID)

	require.NoError(t, repo.MarkAsFailed(ctx, e.ID, 2))
	got, err := repo.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	require.NotNil(t, got.NextRetryAt)

	// scheduled in the future, so not due yet
	pending, err = repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, repo.MarkAsFailed(ctx, e.ID, 2))
	failed, err := repo.GetFailedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Nil(t, failed[0].NextRetryAt)

	require.NoError(t, repo.ReplayEvent(ctx, e.ID))
	pending, err = repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, repo.MarkAsSent(ctx, e.ID))
	got, err = repo.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, got.Status)

	_, err = repo.GetEventByID(ctx, 999999)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, repo.ReplayEvent(ctx, 999999), ErrEventNotFound)
}
