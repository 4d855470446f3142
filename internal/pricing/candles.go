package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/rickgao/phantom-ledger/internal/alpaca"
	"github.com/rickgao/phantom-ledger/internal/apperr"
	"github.com/rickgao/phantom-ledger/internal/model"
	"github.com/rickgao/phantom-ledger/internal/quotecache"
)

// Candle query defaults.
const (
	DefaultInterval = "1day"
	DefaultRange    = "1m"

	candleLimit = 1000
)

var timeframes = map[string]string{
	"5min":  "5Min",
	"15min": "15Min",
	"1hour": "1Hour",
	"1day":  "1Day",
	"1week": "1Week",
}

// Candles returns bars for symbol at interval over rng, cached per
// (symbol, interval, range). Unknown intervals are fetched as daily bars and
// unknown ranges as one month.
func (r *Resolver) Candles(ctx context.Context, symbol, interval, rng string) (model.CandleSet, error) {
	symbol = model.NormalizeTicker(symbol)
	if symbol == "" {
		return model.CandleSet{}, apperr.Validation("ticker is required")
	}
	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval == "" {
		interval = DefaultInterval
	}
	rng = strings.ToLower(strings.TrimSpace(rng))
	if rng == "" {
		rng = DefaultRange
	}

	now := r.now()
	if err := r.checkConfigured(); err != nil {
		r.logger.Warn("returning empty candles", "symbol", symbol, "error", err)
		return model.CandleSet{
			Symbol:    symbol,
			Interval:  interval,
			Candles:   []model.Candle{},
			FetchedAt: now.UTC().Format(time.RFC3339),
		}, nil
	}

	key := quotecache.TimeSeriesKey(symbol, interval, rng)
	payload, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		return model.CandleSet{}, err
	}
	if ok {
		set, err := DecodeCandleSet(payload)
		if err == nil {
			r.logger.Debug("candle cache hit", "symbol", symbol, "interval", interval, "range", rng)
			return set, nil
		}
		r.logger.Warn("discarding undecodable cached candles", "symbol", symbol, "error", err)
	}

	timeframe, ok := timeframes[interval]
	if !ok {
		timeframe = "1Day"
	}
	resp, err := r.market.GetBars(ctx, symbol, alpaca.BarsOptions{
		Timeframe: timeframe,
		Start:     rangeStart(rng, now).Format(dayLayout) + "T00:00:00Z",
		End:       now.UTC().Format(time.RFC3339),
		Limit:     candleLimit,
	})
	if err != nil {
		return model.CandleSet{}, classify("candles", symbol, err)
	}

	candles := make([]model.Candle, 0, len(resp.Bars))
	for _, b := range resp.Bars {
		candles = append(candles, model.Candle{
			Datetime: b.Timestamp,
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			Volume:   b.Volume,
		})
	}
	set := model.CandleSet{
		Symbol:    symbol,
		Interval:  interval,
		Candles:   candles,
		FetchedAt: now.UTC().Format(time.RFC3339),
	}

	if _, err := r.cache.Put(ctx, key, EncodeCandleSet(set), r.timeSeriesTTL, CacheSource); err != nil {
		return model.CandleSet{}, err
	}
	return set, nil
}

// rangeStart returns the first UTC calendar day covered by rng.
func rangeStart(rng string, now time.Time) time.Time {
	today := startOfDay(now.UTC())
	switch rng {
	case "3m":
		return today.AddDate(0, -3, 0)
	case "6m":
		return today.AddDate(0, -6, 0)
	case "1y":
		return today.AddDate(-1, 0, 0)
	case "ytd":
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return today.AddDate(0, -1, 0)
	}
}

// ValidateTicker reports whether symbol is a known asset. An unknown symbol is
// a valid answer, not an error.
func (r *Resolver) ValidateTicker(ctx context.Context, symbol string) (model.TickerInfo, error) {
	symbol = model.NormalizeTicker(symbol)
	if symbol == "" {
		return model.TickerInfo{}, apperr.Validation("ticker is required")
	}

	if err := r.checkConfigured(); err != nil {
		r.logger.Warn("returning mock validation", "symbol", symbol, "error", err)
		return model.TickerInfo{
			Valid:    true,
			Symbol:   symbol,
			Name:     "Mock Asset",
			Exchange: "MOCK",
			Tradable: true,
		}, nil
	}

	asset, err := r.market.GetAsset(ctx, symbol)
	if err != nil {
		if isNotFound(err) {
			return model.TickerInfo{Valid: false, Symbol: symbol}, nil
		}
		return model.TickerInfo{}, apperr.Upstream("validate ticker", err)
	}

	info := model.TickerInfo{
		Valid:    true,
		Symbol:   asset.Symbol,
		Name:     asset.Name,
		Exchange: asset.Exchange,
		Tradable: asset.Tradable,
	}
	if info.Symbol == "" {
		info.Symbol = symbol
	}
	return info, nil
}
