package main

import (
	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Drop every portal table and reload the demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			scheme, err := a.passwordScheme()
			if err != nil {
				return err
			}
			rdb, err := a.openRedis()
			if err != nil {
				return err
			}
			if rdb != nil {
				defer rdb.Close()
			}
			return a.seeder(store, scheme, a.activityFeed(rdb)).Run(cmd.Context())
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing portal tables without touching existing data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, pool, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Seed().EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			if pool != nil {
				if err := newOutboxRepo(pool).EnsureTable(cmd.Context()); err != nil {
					return err
				}
			}
			a.logger.Info("Schema is up to date")
			return nil
		},
	}
}
