// Package events announces doubt forum activity to other services.
package events

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher delivers an event payload under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Noop drops every event; used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

// NewEventID returns the identity consumers deduplicate on. Row ids are not used
// because a reseed starts them again at 1.
func NewEventID() string {
	return uuid.NewString()
}

// Emitter publishes forum events. A transactional emitter writes through its publisher
// inside the forum write's transaction (the outbox); any other emitter publishes after
// commit and only logs failures, so a broker outage cannot fail a committed write.
type Emitter struct {
	pub    Publisher
	inTx   bool
	logger *zap.Logger
}

func NewEmitter(pub Publisher, logger *zap.Logger) *Emitter {
	if pub == nil {
		pub = Noop{}
	}
	return &Emitter{pub: pub, logger: logger}
}

// NewTxEmitter returns an emitter whose publisher joins the caller's transaction.
func NewTxEmitter(pub Publisher, logger *zap.Logger) *Emitter {
	e := NewEmitter(pub, logger)
	e.inTx = true
	return e
}

// Stage runs inside the write transaction. Its error rolls the write back.
func (e *Emitter) Stage(ctx context.Context, routingKey string, payload any) error {
	if !e.inTx {
		return nil
	}
	return e.pub.Publish(ctx, routingKey, payload)
}

// Announce runs after commit.
func (e *Emitter) Announce(ctx context.Context, routingKey string, payload any) {
	if e.inTx {
		return
	}
	if err := e.pub.Publish(ctx, routingKey, payload); err != nil {
		e.logger.Warn("Failed to publish forum event",
			zap.String("routing_key", routingKey),
			zap.Error(err))
	}
}
