// Package ledger keeps each user's running ghost statistics.
//
// Updates are a plain read-modify-write of the DASH#SUMMARY item with no
// conditional write, so two ghosts created concurrently for the same user can
// lose an increment. GhostCount30d is only ever incremented; nothing here
// re-derives it from a 30 day window.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/phantom-ledger/internal/kv"
	"github.com/rickgao/phantom-ledger/internal/model"
)

// Aggregator maintains LedgerSummary items.
type Aggregator struct {
	table  *kv.Table[model.LedgerSummary]
	logger *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates an Aggregator over the application store.
func NewAggregator(store kv.Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		table:  kv.NewTable[model.LedgerSummary](store, SummaryCodec{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summary loads the user's summary. The bool is false if none exists yet.
func (a *Aggregator) Summary(ctx context.Context, userID string) (model.LedgerSummary, bool, error) {
	s, ok, err := a.table.Get(ctx, model.UserPK(userID), model.SummarySK)
	if err != nil {
		return model.LedgerSummary{}, false, fmt.Errorf("get summary %s: %w", userID, err)
	}
	return s, ok, nil
}

// OnGhostCreated counts a new ghost created at createdAt (epoch ms) and
// rewrites the summary in full. Hesitation tags are accepted but do not feed
// the stored tag leaderboard.
func (a *Aggregator) OnGhostCreated(ctx context.Context, userID string, createdAt int64, hesitationTags []string) error {
	current, ok, err := a.Summary(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		current = model.NewLedgerSummary(userID)
	}

	next := current.RecordGhost(createdAt)
	if err := a.table.Put(ctx, next); err != nil {
		return fmt.Errorf("put summary %s: %w", userID, err)
	}

	a.logger.Debug("ledger updated",
		"user_id", userID,
		"ghost_count_total", next.GhostCountTotal,
		"tags", len(hesitationTags),
	)
	return nil
}

// SummaryOrCreate returns the user's summary, persisting a zeroed one on
// first access.
func (a *Aggregator) SummaryOrCreate(ctx context.Context, userID string) (model.LedgerSummary, error) {
	s, ok, err := a.Summary(ctx, userID)
	if err != nil {
		return model.LedgerSummary{}, err
	}
	if ok {
		return s, nil
	}

	a.logger.Info("creating empty summary", "user_id", userID)
	s = model.NewLedgerSummary(userID)
	if err := a.table.Put(ctx, s); err != nil {
		return model.LedgerSummary{}, fmt.Errorf("put summary %s: %w", userID, err)
	}
	return s, nil
}
