package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studentportal/pkg/trace"
)

type memStore struct {
	events map[int64]*Event
	order  []int64
}

func newMemStore(events ...*Event) *memStore {
	s := &memStore{events: map[int64]*Event{}}
	for _, e := range events {
		e.Status = StatusPending
		s.events[e.ID] = e
		s.order = append(s.order, e.ID)
	}
	return s
}

func (s *memStore) byStatus(status string, limit int) []*Event {
	var out []*Event
	for _, id := range s.order {
		if e := s.events[id]; e.Status == status && len(out) < limit {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) GetPendingEvents(_ context.Context, limit int) ([]*Event, error) {
	return s.byStatus(StatusPending, limit), nil
}

func (s *memStore) GetFailedEvents(_ context.Context, limit int) ([]*Event, error) {
	return s.byStatus(StatusFailed, limit), nil
}

func (s *memStore) MarkAsSent(_ context.Context, id int64) error {
	s.events[id].Status = StatusSent
	return nil
}

func (s *memStore) MarkAsFailed(_ context.Context, id int64, maxRetries int) error {
	e := s.events[id]
	e.RetryCount++
	if e.RetryCount >= maxRetries {
		e.Status = StatusFailed
	}
	return nil
}

func (s *memStore) ReplayEvent(_ context.Context, id int64) error {
	e, ok := s.events[id]
	if !ok {
		return ErrEventNotFound
	}
	e.Status, e.RetryCount = StatusPending, 0
	return nil
}

type published struct {
	routingKey string
	payload    any
	traceID    string
}

type recordingPublisher struct {
	sent []published
	fail bool
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.sent = append(p.sent, published{routingKey, payload, trace.FromContext(ctx)})
	return nil
}

func TestDispatcherRelaysPending(t *testing.T) {
	store := newMemStore(
		&Event{ID: 1, RoutingKey: "forum.query.raised", Payload: json.RawMessage(`{"query_id":1}`), TraceID: "t-1"},
		&Event{ID: 2, RoutingKey: "forum.answer.added", Payload: json.RawMessage(`{"answer_id":1}`)},
	)
	pub := &recordingPublisher{}
	d := NewDispatcher(store, pub, zap.NewNop())

	assert.Equal(t, 2, d.ProcessPending(context.Background()))
	require.Len(t, pub.sent, 2)
	assert.Equal(t, "forum.query.raised", pub.sent[0].routingKey)
	assert.Equal(t, json.RawMessage(`{"query_id":1}`), pub.sent[0].payload)
	assert.Equal(t, "t-1", pub.sent[0].traceID)
	assert.Equal(t, StatusSent, store.events[2].Status)

	assert.Zero(t, d.ProcessPending(context.Background()))
}

func TestDispatcherParksAfterMaxRetries(t *testing.T) {
	store := newMemStore(&Event{ID: 1, RoutingKey: "forum.query.raised", Payload: json.RawMessage(`{}`)})
	pub := &recordingPublisher{fail: true}
	d := NewDispatcher(store, pub, zap.NewNop()).WithMaxRetries(2)
	ctx := context.Background()

	d.ProcessPending(ctx)
	assert.Equal(t, StatusPending, store.events[1].Status)
	d.ProcessPending(ctx)
	assert.Equal(t, StatusFailed, store.events[1].Status)

	pub.fail = false
	n, err := d.ReplayFailed(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, d.ProcessPending(ctx))
	assert.Equal(t, StatusSent, store.events[1].Status)
}

func TestDispatcherRejectsInvalidPayload(t *testing.T) {
	store := newMemStore(&Event{ID: 1, RoutingKey: "x", Payload: json.RawMessage(`{`)})
	pub := &recordingPublisher{}
	d := NewDispatcher(store, pub, zap.NewNop()).WithMaxRetries(1)

	assert.Zero(t, d.ProcessPending(context.Background()))
	assert.Empty(t, pub.sent)
	assert.Equal(t, StatusFailed, store.events[1].Status)
}
