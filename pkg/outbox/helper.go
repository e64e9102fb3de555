package outbox

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"studentportal/pkg/db"
	"studentportal/pkg/trace"
)

// Aggregated payloads name the row their event belongs to.
type Aggregated interface {
	AggregateKey() int64
}

// InsertEventInTx stores payload as a pending event inside tx.
func InsertEventInTx(ctx context.Context, tx pgx.Tx, repo *Repository, aggregateType string, aggregateID *int64, routingKey string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return repo.InsertEvent(ctx, tx, &Event{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		RoutingKey:    routingKey,
		Payload:       payloadJSON,
		TraceID:       trace.FromContext(ctx),
	})
}

// Writer stores published events in the outbox instead of sending them.
// The Dispatcher relays them later.
type Writer struct {
	repo          *Repository
	aggregateType string
}

func NewWriter(repo *Repository, aggregateType string) *Writer {
	return &Writer{repo: repo, aggregateType: aggregateType}
}

// Publish records payload under routingKey. Called inside db.RunInTx it joins that
// transaction, so the event commits with the row that caused it.
func (w *Writer) Publish(ctx context.Context, routingKey string, payload any) error {
	var aggregateID *int64
	if a, ok := payload.(Aggregated); ok {
		id := a.AggregateKey()
		aggregateID = &id
	}
	return InsertEventInTx(ctx, db.TxFromContext(ctx), w.repo, w.aggregateType, aggregateID, routingKey, payload)
}
