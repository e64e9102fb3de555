package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mqcontracts "studentportal/contracts/mq"
	"studentportal/internal/mqhandler"
	"studentportal/pkg/mq"
	"studentportal/pkg/util"
)

const activityPrefix = "forum"

// consumerSpec binds one queue to one handler.
type consumerSpec struct {
	queue      string
	routingKey string
	name       string
	idOf       func(json.RawMessage) (string, error)
	handle     mq.MessageHandler
}

func newWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume forum events into the Redis activity feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.work(cmd.Context())
		},
	}
}

func (a *app) work(ctx context.Context) error {
	cfg, log := a.cfg, a.logger
	if cfg.MQ.URL == "" {
		return errors.New("worker requires mq.url")
	}
	if cfg.Redis.Addr == "" {
		return errors.New("worker requires redis.addr")
	}

	log.Info("Starting forum activity worker...", zap.Int64("max_retries", cfg.Worker.MaxRetries))

	rdb, err := a.openRedis()
	if err != nil {
		return err
	}
	defer rdb.Close()

	// DLQ publishing goes through its own connection
	publisher, err := mq.NewPublisher(cfg.MQ.URL, "portal-worker/dlq")
	if err != nil {
		return fmt.Errorf("init DLQ publisher: %w", err)
	}
	defer publisher.Close()

	reliability := mqhandler.Reliability{
		Guard:      util.NewDeduper(rdb, cfg.Worker.DedupTTL, log),
		Attempts:   util.NewRetryCounter(rdb, cfg.Worker.DedupTTL),
		DLQ:        publisher,
		MaxRetries: cfg.Worker.MaxRetries,
		Logger:     log,
	}
	activityHandler := mqhandler.NewForumActivityHandler(a.activityFeed(rdb), log)

	consumers := []consumerSpec{
		{
			queue:      "forum.query.raised.activity.q",
			routingKey: mqcontracts.RoutingQueryRaised,
			name:       "activity_query",
			idOf:       mqhandler.QueryRaisedID,
			handle:     activityHandler.HandleQueryRaised,
		},
		{
			queue:      "forum.answer.added.activity.q",
			routingKey: mqcontracts.RoutingAnswerAdded,
			name:       "activity_answer",
			idOf:       mqhandler.AnswerAddedID,
			handle:     activityHandler.HandleAnswerAdded,
		},
	}

	errCh := make(chan error, len(consumers))
	for _, cs := range consumers {
		if err := publisher.DeclareDLQ(cs.routingKey); err != nil {
			return err
		}

		log.Info("Initializing MQ consumer...",
			zap.String("queue", cs.queue),
			zap.String("routing_key", cs.routingKey),
		)
		consumer, err := mq.NewConsumer(cfg.MQ.URL, cs.queue, cs.routingKey, log)
		if err != nil {
			return fmt.Errorf("init consumer %s: %w", cs.queue, err)
		}
		defer consumer.Close()

		consumer.SetHandler(reliability.Wrap(cs.name, cs.routingKey, cs.idOf, cs.handle))

		go func(queue string) {
			if err := consumer.StartConsuming(); err != nil {
				errCh <- fmt.Errorf("consumer %s: %w", queue, err)
			}
		}(cs.queue)
	}

	log.Info("All consumers started, worker is ready to process messages")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down forum activity worker...")
	return nil
}
