package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rickgao/phantom-ledger/internal/pricing"
	"github.com/rickgao/phantom-ledger/internal/server"
	"github.com/spf13/cobra"
)

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Resolve a live or historical quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			app, err := server.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			if at == "" {
				q, err := app.Resolver.LiveQuote(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), q)
			}

			day, err := time.ParseInLocation(time.DateOnly, at, time.UTC)
			if err != nil {
				return fmt.Errorf("bad --at: %w", err)
			}
			// Noon UTC lands on the same calendar day in New York.
			q, err := app.Resolver.HistoricalQuote(cmd.Context(), args[0], day.Add(12*time.Hour).UnixMilli())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), q)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "trading day (YYYY-MM-DD) for a historical close")
	return cmd
}

func newCandlesCmd(opts *rootOptions) *cobra.Command {
	var interval, rng string

	cmd := &cobra.Command{
		Use:   "candles SYMBOL",
		Short: "Fetch OHLCV bars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			app, err := server.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			set, err := app.Resolver.Candles(cmd.Context(), args[0], interval, rng)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), set)
		},
	}

	cmd.Flags().StringVar(&interval, "interval", pricing.DefaultInterval, "bar interval (5min, 15min, 1hour, 1day, 1week)")
	cmd.Flags().StringVar(&rng, "range", pricing.DefaultRange, "look-back range (1m, 3m, 6m, 1y, ytd)")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
