package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"studentportal/internal/activity"
	"studentportal/internal/config"
	"studentportal/internal/repository"
	"studentportal/internal/repository/memory"
	"studentportal/internal/repository/postgres"
	"studentportal/internal/seed"
	"studentportal/internal/service"
	"studentportal/pkg/db"
	"studentportal/pkg/logger"
	"studentportal/pkg/otel"
	redisclient "studentportal/pkg/redis"
)

const serviceName = "student-portal"

// portalStore is implemented by both store drivers.
type portalStore interface {
	Users() repository.UserRepository
	Dashboard() repository.DashboardReader
	Scores() repository.ScoreRepository
	Forum() repository.ForumRepository
	Seed() repository.SeedWriter
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
	Close()
}

// app carries what every subcommand shares.
type app struct {
	configDir string

	cfg    *config.Config
	logger *zap.Logger

	shutdownTracing func()
}

func (a *app) init() error {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.logger = logger.NewLogger(cfg.Log)

	shutdown, err := otel.Init(otel.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.OTel.Endpoint,
		Enabled:        cfg.OTel.Enabled,
	}, a.logger)
	if err != nil {
		a.logger.Warn("Failed to initialize tracing, continuing without export", zap.Error(err))
		shutdown = func() {}
	}
	a.shutdownTracing = shutdown
	return nil
}

func (a *app) close() {
	if a.shutdownTracing != nil {
		a.shutdownTracing()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// openStore returns the configured store. The pool is nil for the memory driver.
func (a *app) openStore() (portalStore, *pgxpool.Pool, error) {
	switch a.cfg.Store.Driver {
	case config.StoreDriverMemory:
		a.logger.Info("Using in-memory store")
		return memory.NewStore(), nil, nil
	default:
		pool, err := db.NewConnection(a.cfg.DB, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(pool, a.logger), pool, nil
	}
}

// openRedis returns nil when no address is configured.
func (a *app) openRedis() (*redis.Client, error) {
	if a.cfg.Redis.Addr == "" {
		return nil, nil
	}
	rdb, err := redisclient.NewRedisClient(a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Redis connection established", zap.String("addr", a.cfg.Redis.Addr))
	return rdb, nil
}

func (a *app) passwordScheme() (service.PasswordScheme, error) {
	return service.NewPasswordScheme(a.cfg.Auth.PasswordScheme)
}

// seeder clears feed too when it is non-nil, since its entries point at the dropped rows.
func (a *app) seeder(store portalStore, scheme service.PasswordScheme, feed *activity.Feed) *seed.Seeder {
	opts := []seed.Option{
		seed.WithPasswordEncoder(scheme),
		seed.WithCredentialLog(a.cfg.Seed.LogCredentials),
	}
	if feed != nil {
		opts = append(opts, seed.WithResetHook(feed.Reset))
	}
	return seed.NewSeeder(store.Seed(), a.logger, opts...)
}

// activityFeed returns nil without Redis.
func (a *app) activityFeed(rdb *redis.Client) *activity.Feed {
	if rdb == nil {
		return nil
	}
	return activity.NewFeed(rdb, activityPrefix, a.cfg.Worker.FeedSize)
}
