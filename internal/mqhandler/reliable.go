// Package mqhandler consumes portal events from RabbitMQ.
package mqhandler

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"studentportal/pkg/logger"
	"studentportal/pkg/metrics"
	"studentportal/pkg/mq"
	"studentportal/pkg/util"
)

// OnceGuard remembers which events a handler already processed.
type OnceGuard interface {
	AcquireOnce(ctx context.Context, handler, eventID string) bool
	Release(ctx context.Context, handler, eventID string) error
}

// AttemptCounter counts deliveries per event.
type AttemptCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// DeadLetterer parks events that will never succeed.
type DeadLetterer interface {
	PublishToDLQ(ctx context.Context, routingKey string, payload []byte, failedAt, originalError string) error
}

// Reliability wraps handlers with dedup, bounded retries and dead-lettering.
type Reliability struct {
	Guard      OnceGuard
	Attempts   AttemptCounter
	DLQ        DeadLetterer
	MaxRetries int64
	Logger     *zap.Logger
}

// Wrap returns a handler that processes each event id at most once. A retryable failure is
// returned to the consumer (nack with requeue) until MaxRetries is exceeded; anything else goes
// to the dead letter exchange and is acked.
func (r Reliability) Wrap(name, routingKey string, idOf func(json.RawMessage) (string, error), h mq.MessageHandler) mq.MessageHandler {
	return func(ctx context.Context, raw json.RawMessage) error {
		l := logger.WithTrace(ctx, r.Logger).With(zap.String("handler", name))

		id, err := idOf(raw)
		if err != nil {
			return r.deadLetter(ctx, l, name, routingKey, raw, err)
		}
		l = l.With(zap.String("event_id", id))

		if !r.Guard.AcquireOnce(ctx, name, id) {
			metrics.IncrementEventProcessed(name, "duplicate")
			return nil
		}

		retryKey := util.FormatRetryKey(name, id)
		err = h(ctx, raw)
		if err == nil {
			if rerr := r.Attempts.Reset(ctx, retryKey); rerr != nil {
				l.Warn("Failed to reset retry counter", zap.Error(rerr))
			}
			metrics.IncrementEventProcessed(name, "ok")
			return nil
		}

		retryable, kind := util.IsRetryableError(err)
		attempt, cerr := r.Attempts.IncrementAndGet(ctx, retryKey)
		if cerr != nil {
			l.Warn("Retry counter unavailable", zap.Error(cerr))
			attempt = 1
		}

		if util.ShouldRetry(attempt, r.MaxRetries, retryable) {
			l.Warn("Event failed, will retry",
				zap.String("error_type", kind),
				zap.Int64("attempt", attempt),
				zap.Error(err),
			)
			r.release(ctx, l, name, id)
			metrics.IncrementEventProcessed(name, "retry")
			return err
		}

		l.Error("Event failed permanently",
			zap.String("error_type", kind),
			zap.Int64("attempt", attempt),
			zap.Error(err),
		)
		if derr := r.deadLetter(ctx, l, name, routingKey, raw, err); derr != nil {
			r.release(ctx, l, name, id)
			return derr
		}
		return nil
	}
}

func (r Reliability) deadLetter(ctx context.Context, l *zap.Logger, name, routingKey string, raw json.RawMessage, cause error) error {
	failedAt := time.Now().UTC().Format(time.RFC3339)
	if err := r.DLQ.PublishToDLQ(ctx, routingKey, raw, failedAt, name+": "+cause.Error()); err != nil {
		l.Error("Failed to publish to DLQ", zap.Error(err))
		return err
	}
	l.Warn("Event dead-lettered", zap.Error(cause))
	metrics.IncrementEventProcessed(name, "dead_letter")
	return nil
}

func (r Reliability) release(ctx context.Context, l *zap.Logger, name, id string) {
	if err := r.Guard.Release(ctx, name, id); err != nil {
		l.Warn("Failed to release dedup key", zap.Error(err))
	}
}
