package main

import (
	"os/signal"
	"syscall"

	"github.com/rickgao/phantom-ledger/internal/server"
	"github.com/rickgao/phantom-ledger/internal/version"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			logger.Info("starting phantom",
				"version", version.Version,
				"commit", version.Commit,
				"config", opts.configPath,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := server.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := server.Run(ctx, cfg, app, logger); err != nil {
				return err
			}
			logger.Info("phantom stopped")
			return nil
		},
	}
}
