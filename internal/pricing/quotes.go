package pricing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rickgao/phantom-ledger/internal/alpaca"
	"github.com/rickgao/phantom-ledger/internal/apperr"
	"github.com/rickgao/phantom-ledger/internal/model"
	"github.com/rickgao/phantom-ledger/internal/quotecache"
)

const dayLayout = "2006-01-02"

// LiveQuote returns the current quote for symbol, served from the cache while
// fresh and from the provider snapshot otherwise.
func (r *Resolver) LiveQuote(ctx context.Context, symbol string) (model.Quote, error) {
	symbol = model.NormalizeTicker(symbol)
	if symbol == "" {
		return model.Quote{}, apperr.Validation("ticker is required")
	}

	if err := r.checkConfigured(); err != nil {
		r.logger.Warn("returning mock quote", "symbol", symbol, "error", err)
		return model.MockQuote(symbol, r.now()), nil
	}

	key := quotecache.LatestPriceKey(symbol)
	payload, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		return model.Quote{}, err
	}
	if ok {
		q, err := DecodeQuote(payload)
		if err == nil {
			r.logger.Debug("quote cache hit", "symbol", symbol)
			return q, nil
		}
		r.logger.Warn("discarding undecodable cached quote", "symbol", symbol, "error", err)
	}

	snap, err := r.market.GetSnapshot(ctx, symbol)
	if err != nil {
		return model.Quote{}, classify("live quote", symbol, err)
	}
	if snap.LatestTrade == nil || snap.LatestTrade.Price == nil {
		return model.Quote{}, &apperr.UpstreamError{
			Op:  "live quote",
			Msg: "snapshot for " + symbol + " has no latest trade price",
		}
	}

	now := r.now()
	providerTS := snap.LatestTrade.Timestamp
	if providerTS == "" {
		providerTS = now.UTC().Format(time.RFC3339)
	}
	q := model.Quote{
		Symbol:            symbol,
		Price:             *snap.LatestTrade.Price,
		ProviderTimestamp: providerTS,
		CapturedAt:        now.UnixMilli(),
		Source:            model.QuoteSourceLive,
	}

	if _, err := r.cache.Put(ctx, key, EncodeQuote(q), r.quoteTTL, CacheSource); err != nil {
		return model.Quote{}, err
	}

	return q, nil
}

// HistoricalQuote returns the daily close of the market day containing
// consideredAt (epoch ms). Days before the look-back window are rejected.
// Results are not cached.
func (r *Resolver) HistoricalQuote(ctx context.Context, symbol string, consideredAt int64) (model.Quote, error) {
	symbol = model.NormalizeTicker(symbol)
	if symbol == "" {
		return model.Quote{}, apperr.Validation("ticker is required")
	}

	day := startOfDay(time.UnixMilli(consideredAt).In(r.location))
	today := startOfDay(r.now().In(r.location))
	earliest := today.AddDate(0, 0, -r.lookbackDays)
	if day.Before(earliest) {
		return model.Quote{}, apperr.Validation("historical data limited to %d days", r.lookbackDays)
	}

	if err := r.checkConfigured(); err != nil {
		r.logger.Warn("returning mock quote", "symbol", symbol, "error", err)
		return model.MockQuote(symbol, r.now()), nil
	}

	dayStr := day.Format(dayLayout)
	resp, err := r.market.GetBars(ctx, symbol, alpaca.BarsOptions{
		Timeframe: "1Day",
		Start:     dayStr + "T00:00:00Z",
		End:       day.AddDate(0, 0, 1).Format(dayLayout) + "T00:00:00Z",
		Limit:     1,
	})
	if err != nil {
		return model.Quote{}, classify("historical quote", symbol, err)
	}
	if len(resp.Bars) == 0 {
		return model.Quote{}, &apperr.UpstreamError{
			Op:  "historical quote",
			Msg: fmt.Sprintf("no market data available for %s; market may have been closed", dayStr),
		}
	}

	bar := resp.Bars[0]
	providerTS := bar.Timestamp
	if providerTS == "" {
		providerTS = dayStr
	}
	return model.Quote{
		Symbol:            symbol,
		Price:             bar.Close,
		ProviderTimestamp: providerTS,
		CapturedAt:        r.now().UnixMilli(),
		Source:            model.QuoteSourceHistorical,
	}, nil
}

// BestEffortQuote returns the live quote for symbol, or a MOCK quote priced at
// zero if anything goes wrong. It never fails.
func (r *Resolver) BestEffortQuote(ctx context.Context, symbol string) model.Quote {
	q, err := r.LiveQuote(ctx, symbol)
	if err != nil {
		r.logger.Error("market quote failed, returning mock quote",
			"symbol", model.NormalizeTicker(symbol),
			"error", err,
		)
		return model.MockQuote(symbol, r.now())
	}
	return q
}

// classify maps a provider error onto the domain taxonomy: an unknown symbol
// is the caller's fault, anything else is an upstream failure.
func classify(op, symbol string, err error) error {
	var apiErr *alpaca.APIError
	if errors.As(err, &apiErr) && apiErr.IsSymbolNotFound() {
		return apperr.Validation("invalid ticker symbol: %s", symbol)
	}
	return apperr.Upstream(op, err)
}

// checkConfigured returns a NotConfiguredError when the provider has no
// credentials. Callers answer with mock data instead of failing.
func (r *Resolver) checkConfigured() error {
	if !r.market.Configured() {
		return &apperr.NotConfiguredError{Provider: "alpaca"}
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *alpaca.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
