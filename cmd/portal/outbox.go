package main

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studentportal/internal/config"
	"studentportal/pkg/outbox"
)

const outboxAggregate = "forum"

func newOutboxRepo(pool *pgxpool.Pool) *outbox.Repository {
	return outbox.NewRepository(pool)
}

func newOutboxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and repair the forum event outbox",
	}

	var limit int
	replay := &cobra.Command{
		Use:   "replay",
		Short: "Move failed outbox events back to pending",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Store.Driver != config.StoreDriverPostgres {
				return errors.New("the outbox requires the postgres store")
			}
			store, pool, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			repo := newOutboxRepo(pool)
			if err := repo.EnsureTable(cmd.Context()); err != nil {
				return err
			}
			n, err := outbox.NewDispatcher(repo, nil, a.logger).ReplayFailed(cmd.Context(), limit)
			if err != nil {
				return err
			}
			a.logger.Info("Replayed failed outbox events", zap.Int("count", n))
			return nil
		},
	}
	replay.Flags().IntVar(&limit, "limit", 100, "maximum number of events to replay")

	cmd.AddCommand(replay)
	return cmd
}
