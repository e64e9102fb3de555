package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	// SIGINT/SIGTERM cancel the command context; long-running commands shut down on it
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "portal",
		Short:        "Student portal server and maintenance commands",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "config", "directory holding base.yaml and per-environment overlays")

	root.AddCommand(
		newServeCmd(a),
		newSeedCmd(a),
		newMigrateCmd(a),
		newWorkerCmd(a),
		newOutboxCmd(a),
	)
	return root
}
