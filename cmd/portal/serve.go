package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studentportal/internal/completion"
	"studentportal/internal/events"
	"studentportal/internal/handler"
	"studentportal/internal/httpserver"
	"studentportal/internal/ratelimit"
	"studentportal/internal/service"
	"studentportal/pkg/mq"
	"studentportal/pkg/outbox"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, log := a.cfg, a.logger

	log.Info("Starting student portal...",
		zap.String("store", cfg.Store.Driver),
		zap.String("port", cfg.Server.Port),
		zap.Bool("seed_on_start", cfg.Seed.OnStart),
	)

	// Store
	store, pool, err := a.openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.Seed().EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	scheme, err := a.passwordScheme()
	if err != nil {
		return err
	}

	// Redis: rate limiting and the activity feed read side
	rdb, err := a.openRedis()
	if err != nil {
		return err
	}
	activityFeed := a.activityFeed(rdb)
	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	var feed handler.ActivityReader
	if rdb != nil {
		defer rdb.Close()
		if n := cfg.RateLimit.DoubtSolverPerMinute; n > 0 {
			limiter = ratelimit.NewRedisLimiter(rdb, "doubt-solver", n, time.Minute, log)
		}
		feed = activityFeed
	}

	if cfg.Seed.OnStart {
		if err := a.seeder(store, scheme, activityFeed).Run(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	// Forum events
	deps := httpserver.Deps{Store: store}
	emitter := events.NewEmitter(nil, log)
	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, "portal-serve")
		if err != nil {
			return fmt.Errorf("init publisher: %w", err)
		}
		defer publisher.Close()
		deps.Broker = publisher

		emitter = events.NewEmitter(publisher, log)
		if pool != nil {
			writer, err := a.startOutbox(ctx, pool, publisher)
			if err != nil {
				return err
			}
			emitter = events.NewTxEmitter(writer, log)
		}
	} else {
		log.Info("MQ url not set, forum events are disabled")
	}

	// Services
	sessions := service.NewSessionIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	current := service.NewCurrentUserResolver(store.Users(), sessions, log)
	completer := completion.NewOpenAIClient(cfg.Completion, log)

	h := httpserver.Handlers{
		Auth:  handler.NewAuthHandler(service.NewAuthService(store.Users(), scheme, sessions, log), log),
		Users: handler.NewUserHandler(service.NewUserService(store.Users(), scheme, log), log),
		Dashboard: handler.NewDashboardHandler(
			service.NewDashboardService(store.Dashboard()),
			service.NewPerformanceService(store.Scores()),
			current,
			log,
		),
		Forum:    handler.NewForumHandler(service.NewForumService(store.Forum(), store, emitter, log), log),
		Doubt:    handler.NewDoubtHandler(service.NewDoubtSolverService(completer, limiter, log), log),
		Videos:   handler.NewVideoHandler(service.NewVideoCatalog(nil)),
		Activity: handler.NewActivityHandler(feed, log),
	}

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           httpserver.NewRouter(h, deps, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down student portal gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
	log.Info("Student portal shutdown complete")
	return nil
}

// startOutbox routes forum events through the outbox table and relays them until ctx ends.
func (a *app) startOutbox(ctx context.Context, pool *pgxpool.Pool, publisher *mq.Publisher) (*outbox.Writer, error) {
	repo := newOutboxRepo(pool)
	if err := repo.EnsureTable(ctx); err != nil {
		return nil, err
	}

	oc := a.cfg.Outbox
	dispatcher := outbox.NewDispatcher(repo, publisher, a.logger).
		WithMaxRetries(oc.MaxRetries).
		WithInterval(oc.PollInterval).
		WithBatchSize(oc.BatchSize)
	go dispatcher.Start(ctx)

	return outbox.NewWriter(repo, outboxAggregate), nil
}
