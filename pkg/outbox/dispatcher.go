package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"studentportal/pkg/trace"
)

// Store is the part of Repository the Dispatcher needs.
type Store interface {
	GetPendingEvents(ctx context.Context, limit int) ([]*Event, error)
	GetFailedEvents(ctx context.Context, limit int) ([]*Event, error)
	MarkAsSent(ctx context.Context, eventID int64) error
	MarkAsFailed(ctx context.Context, eventID int64, maxRetries int) error
	ReplayEvent(ctx context.Context, eventID int64) error
}

// Publisher sends one payload to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Dispatcher polls the outbox and relays pending events to the broker.
type Dispatcher struct {
	repo       Store
	publisher  Publisher
	logger     *zap.Logger
	maxRetries int
	interval   time.Duration
	batchSize  int
}

func NewDispatcher(repo Store, publisher Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repo:       repo,
		publisher:  publisher,
		logger:     logger,
		maxRetries: 5,
		interval:   time.Second,
		batchSize:  100,
	}
}

func (d *Dispatcher) WithMaxRetries(maxRetries int) *Dispatcher {
	d.maxRetries = maxRetries
	return d
}

func (d *Dispatcher) WithInterval(interval time.Duration) *Dispatcher {
	d.interval = interval
	return d
}

func (d *Dispatcher) WithBatchSize(batchSize int) *Dispatcher {
	d.batchSize = batchSize
	return d
}

// Start polls until ctx is cancelled. Run it in its own goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("Starting Outbox Dispatcher",
		zap.Int("max_retries", d.maxRetries),
		zap.Duration("interval", d.interval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox Dispatcher stopped")
			return
		case <-ticker.C:
			d.ProcessPending(ctx)
		}
	}
}

// ProcessPending relays one batch and returns how many events were sent.
func (d *Dispatcher) ProcessPending(ctx context.Context) int {
	events, err := d.repo.GetPendingEvents(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("Failed to get pending events", zap.Error(err))
		return 0
	}
	if len(events) == 0 {
		return 0
	}

	d.logger.Debug("Processing pending events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		l := d.logger.With(
			zap.Int64("event_id", event.ID),
			zap.String("routing_key", event.RoutingKey),
		)

		if err := d.publishEvent(ctx, event); err != nil {
			l.Error("Failed to publish event", zap.Error(err))
			if err := d.repo.MarkAsFailed(ctx, event.ID, d.maxRetries); err != nil {
				l.Error("Failed to mark event as failed", zap.Error(err))
			}
			continue
		}

		if err := d.repo.MarkAsSent(ctx, event.ID); err != nil {
			// the event goes out again on the next tick; consumers dedupe
			l.Error("Failed to mark event as sent", zap.Error(err))
			continue
		}
		sent++
		l.Debug("Event published successfully")
	}
	return sent
}

// ReplayFailed moves up to limit failed events back to pending and returns how many moved.
func (d *Dispatcher) ReplayFailed(ctx context.Context, limit int) (int, error) {
	events, err := d.repo.GetFailedEvents(ctx, limit)
	if err != nil {
		return 0, err
	}

	replayed := 0
	for _, event := range events {
		if err := d.repo.ReplayEvent(ctx, event.ID); err != nil {
			d.logger.Error("Failed to replay event", zap.Int64("event_id", event.ID), zap.Error(err))
			continue
		}
		replayed++
	}
	return replayed, nil
}

func (d *Dispatcher) publishEvent(ctx context.Context, event *Event) error {
	if !json.Valid(event.Payload) {
		return fmt.Errorf("event %d has invalid payload", event.ID)
	}
	if event.TraceID != "" {
		ctx = trace.WithContext(ctx, event.TraceID)
	}
	if err := d.publisher.Publish(ctx, event.RoutingKey, event.Payload); err != nil {
		return fmt.Errorf("failed to publish to MQ: %w", err)
	}
	return nil
}
