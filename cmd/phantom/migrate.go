package main

import (
	"fmt"

	"github.com/rickgao/phantom-ledger/internal/config"
	"github.com/rickgao/phantom-ledger/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the postgres item tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Store.Backend != config.BackendPostgres {
				return fmt.Errorf("migrate needs store.backend=postgres, got %q", cfg.Store.Backend)
			}
			if cfg.Store.AppTable != config.DefaultAppTable || cfg.Store.CacheTable != config.DefaultCacheTable {
				logger.Warn("migrations only create the default tables",
					"app_table", cfg.Store.AppTable,
					"cache_table", cfg.Store.CacheTable,
				)
			}

			pool, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			db := database.OpenDB(pool)
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info("migrations applied", "database", cfg.Database.Name)
			return nil
		},
	}
}
