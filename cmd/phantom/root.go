package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rickgao/phantom-ledger/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "phantom",
		Short: "Ghost trade ledger: log the trades you didn't make",
		Long: `Phantom records trades a user considered but did not execute, prices them
from live, historical or manual quotes, and keeps a per-user summary ledger.

Without --config the service runs on in-memory stores with mocked quotes and
X-User-Id header identity.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config file")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newQuoteCmd(opts),
		newCandlesCmd(opts),
		newTokenCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// load reads the config file, or the defaults when none was given, and
// installs the configured logger as the slog default.
func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.LoadAndValidate(o.configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
	}

	logger, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}

	hopts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("logging.format must be text or json, got %q", cfg.Format)
	}
}
