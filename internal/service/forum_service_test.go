package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "studentportal/contracts/mq"
	"studentportal/internal/events"
	"studentportal/internal/repository/memory"
)

type capturePublisher struct {
	keys     []string
	payloads []any
	err      error
}

func (c *capturePublisher) Publish(_ context.Context, key string, payload any) error {
	c.keys = append(c.keys, key)
	c.payloads = append(c.payloads, payload)
	return c.err
}

// txRecorder records the outcome of every transaction the service opens.
type txRecorder struct{ results []error }

func (r *txRecorder) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	r.results = append(r.results, err)
	return err
}

func TestForumService(t *testing.T) {
	store := memory.NewStore()
	pub := &capturePublisher{}
	svc := NewForumService(store.Forum(), store, events.NewEmitter(pub, zap.NewNop()), zap.NewNop())
	ctx := context.Background()

	_, err := svc.RaiseQuery(ctx, json.RawMessage(`["x"]`), "   ")
	assert.ErrorIs(t, err, ErrBriefRequired)

	q, err := svc.RaiseQuery(ctx, nil, "  What is entropy?  ")
	require.NoError(t, err)
	assert.Equal(t, "What is entropy?", q.Brief)

	_, err = svc.AddAnswer(ctx, 0, "answer")
	assert.ErrorIs(t, err, ErrAnswerRequired)
	_, err = svc.AddAnswer(ctx, q.ID, "  ")
	assert.ErrorIs(t, err, ErrAnswerRequired)
	_, err = svc.AddAnswer(ctx, q.ID+100, "answer")
	assert.ErrorIs(t, err, ErrQueryNotFound)

	a, err := svc.AddAnswer(ctx, q.ID, " Disorder. ")
	require.NoError(t, err)
	assert.Equal(t, "Disorder.", a.Text)
	assert.False(t, a.CreatedAt.IsZero())

	assert.Equal(t, []string{mqcontracts.RoutingQueryRaised, mqcontracts.RoutingAnswerAdded}, pub.keys)
	raised := pub.payloads[0].(mqcontracts.QueryRaisedPayload)
	added := pub.payloads[1].(mqcontracts.AnswerAddedPayload)
	assert.NotEmpty(t, raised.EventID)
	assert.NotEqual(t, raised.EventID, added.EventID)
	assert.Equal(t, int64(q.ID), added.AggregateKey())
}

func TestForumServiceKeepsMentionsAsSent(t *testing.T) {
	store := memory.NewStore()
	pub := &capturePublisher{}
	svc := NewForumService(store.Forum(), store, events.NewEmitter(pub, zap.NewNop()), zap.NewNop())

	_, err := svc.RaiseQuery(context.Background(), json.RawMessage(`["optics", 1.5, true]`), "Lens?")
	require.NoError(t, err)

	queries, err := store.Forum().ListQueries(context.Background())
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.JSONEq(t, `["optics", 1.5, true]`, string(queries[0].SpecialMentions))
	assert.JSONEq(t, `["optics", 1.5, true]`, string(pub.payloads[0].(mqcontracts.QueryRaisedPayload).SpecialMentions))
}

func TestForumServiceStagesEventsInTransaction(t *testing.T) {
	store := memory.NewStore()
	tx := &txRecorder{}
	pub := &capturePublisher{}
	svc := NewForumService(store.Forum(), tx, events.NewTxEmitter(pub, zap.NewNop()), zap.NewNop())
	ctx := context.Background()

	q, err := svc.RaiseQuery(ctx, nil, "Why?")
	require.NoError(t, err)
	_, err = svc.AddAnswer(ctx, q.ID, "Because.")
	require.NoError(t, err)

	// staged once inside each transaction, never again after commit
	assert.Equal(t, []string{mqcontracts.RoutingQueryRaised, mqcontracts.RoutingAnswerAdded}, pub.keys)
	assert.Equal(t, []error{nil, nil}, tx.results)

	pub.err = errors.New("outbox unavailable")
	_, err = svc.AddAnswer(ctx, q.ID, "Again.")
	assert.EqualError(t, err, "outbox unavailable")
	assert.EqualError(t, tx.results[2], "outbox unavailable")

	_, err = svc.AddAnswer(ctx, q.ID+1, "Nope.")
	assert.ErrorIs(t, err, ErrQueryNotFound)
}
