package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/rickgao/phantom-ledger/internal/alpaca"
	"github.com/rickgao/phantom-ledger/internal/apperr"
	"github.com/rickgao/phantom-ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Manual(t *testing.T) {
	t.Run("price is taken verbatim", func(t *testing.T) {
		for _, ticker := range []string{"AAPL", " aapl ", "msft", "BRK.B"} {
			f := newFixture(true)
			res, err := f.resolver.Resolve(context.Background(), Request{
				UserID:        "u1",
				Ticker:        ticker,
				Direction:     model.DirectionBuy,
				PriceSource:   model.PriceSourceManual,
				QuantityType:  model.QuantityShares,
				IntendedSize:  dec("10"),
				IntendedPrice: decPtr("150.0"),
			})
			require.NoError(t, err, ticker)
			assert.True(t, res.Quote.Price.Equal(dec("150")), ticker)
			assert.Equal(t, model.QuoteSourceManual, res.Quote.Source)
			assert.Equal(t, "", res.Quote.ProviderTimestamp)
			assert.Equal(t, model.NormalizeTicker(ticker), res.Quote.Symbol)
			assert.Zero(t, f.market.snapshotCalls+len(f.market.barsCalls), "manual pricing must not call upstream")
		}
	})

	t.Run("normalized example", func(t *testing.T) {
		f := newFixture(false)
		res, err := f.resolver.Resolve(context.Background(), Request{
			UserID:        "u1",
			Ticker:        " aapl ",
			Direction:     model.DirectionBuy,
			PriceSource:   model.PriceSourceManual,
			QuantityType:  model.QuantityShares,
			IntendedSize:  dec("10"),
			IntendedPrice: decPtr("150.0"),
		})
		require.NoError(t, err)
		assert.Equal(t, "AAPL", res.Ticker)
		assert.True(t, res.Shares.Equal(dec("10")))
		assert.True(t, res.Dollars.Equal(dec("1500")))
		assert.Equal(t, testNow.UnixMilli(), res.ConsideredAt)
		assert.Equal(t, testNow.UnixMilli(), res.Quote.CapturedAt)
	})

	t.Run("caller consideredAt is kept", func(t *testing.T) {
		f := newFixture(true)
		at := testNow.AddDate(0, 0, -3).UnixMilli()
		res, err := f.resolver.Resolve(context.Background(), Request{
			Ticker:        "AAPL",
			Direction:     model.DirectionSell,
			PriceSource:   model.PriceSourceManual,
			QuantityType:  model.QuantityDollars,
			IntendedSize:  dec("300"),
			IntendedPrice: decPtr("150"),
			ConsideredAt:  int64Ptr(at),
		})
		require.NoError(t, err)
		assert.Equal(t, at, res.ConsideredAt)
		assert.True(t, res.Shares.Equal(dec("2")))
		assert.True(t, res.Dollars.Equal(dec("300")))
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name  string
			price *decimal.Decimal
			want  string
		}{
			{"missing price", nil, "intendedPrice is required for MANUAL pricing"},
			{"zero price", decPtr("0"), "intendedPrice must be positive"},
			{"negative price", decPtr("-1.5"), "intendedPrice must be positive"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(true)
				_, err := f.resolver.Resolve(context.Background(), Request{
					Ticker:        "AAPL",
					Direction:     model.DirectionBuy,
					PriceSource:   model.PriceSourceManual,
					QuantityType:  model.QuantityShares,
					IntendedSize:  dec("1"),
					IntendedPrice: tt.price,
				})
				require.Error(t, err)
				assert.True(t, apperr.IsValidation(err), "got %T", err)
				assert.EqualError(t, err, tt.want)
			})
		}
	})
}

func TestResolve_InvalidInput(t *testing.T) {
	base := Request{
		Ticker:        "AAPL",
		Direction:     model.DirectionBuy,
		PriceSource:   model.PriceSourceManual,
		QuantityType:  model.QuantityShares,
		IntendedSize:  dec("1"),
		IntendedPrice: decPtr("10"),
	}

	tests := []struct {
		name   string
		mutate func(*Request)
		want   string
	}{
		{"empty ticker", func(r *Request) { r.Ticker = "   " }, "ticker is required"},
		{"unknown direction", func(r *Request) { r.Direction = "HOLD" }, "invalid direction: HOLD"},
		{"unknown price source", func(r *Request) { r.PriceSource = "ORACLE" }, "invalid priceSource: ORACLE"},
		{"unknown quantity type", func(r *Request) { r.QuantityType = "LOTS" }, "invalid quantityType: LOTS"},
		{"negative size", func(r *Request) { r.IntendedSize = dec("-1") }, "intended size must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true)
			req := base
			tt.mutate(&req)
			_, err := f.resolver.Resolve(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err), "got %T", err)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestResolve_Live(t *testing.T) {
	t.Run("uses snapshot and ignores caller price", func(t *testing.T) {
		f := newFixture(true)
		f.market.snapshot = snapshotAt("187.25", "2025-06-16T15:59:58Z")

		res, err := f.resolver.Resolve(context.Background(), Request{
			Ticker:        "aapl",
			Direction:     model.DirectionBuy,
			PriceSource:   model.PriceSourceLive,
			QuantityType:  model.QuantityShares,
			IntendedSize:  dec("2"),
			IntendedPrice: decPtr("1"),
			ConsideredAt:  int64Ptr(1),
		})
		require.NoError(t, err)
		assert.True(t, res.Quote.Price.Equal(dec("187.25")))
		assert.Equal(t, model.QuoteSourceLive, res.Quote.Source)
		assert.Equal(t, "2025-06-16T15:59:58Z", res.Quote.ProviderTimestamp)
		assert.Equal(t, testNow.UnixMilli(), res.ConsideredAt, "live pricing forces consideredAt to now")
		assert.True(t, res.Dollars.Equal(dec("374.5")))
	})

	t.Run("legacy MARKET_CURRENT", func(t *testing.T) {
		f := newFixture(true)
		f.market.snapshot = snapshotAt("10", "")

		res, err := f.resolver.Resolve(context.Background(), Request{
			Ticker:       "AAPL",
			Direction:    model.DirectionBuy,
			PriceSource:  "MARKET_CURRENT",
			QuantityType: model.QuantityShares,
			IntendedSize: dec("1"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.PriceSourceLive, res.PriceSource)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		f := newFixture(true)
		f.market.snapshotErr = &alpaca.APIError{StatusCode: 422, Message: "invalid symbol"}

		_, err := f.resolver.Resolve(context.Background(), Request{
			Ticker:       "zzzz",
			Direction:    model.DirectionBuy,
			PriceSource:  model.PriceSourceLive,
			QuantityType: model.QuantityShares,
			IntendedSize: dec("1"),
		})
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
		assert.EqualError(t, err, "invalid ticker symbol: ZZZZ")
	})

	t.Run("unconfigured yields mock with zero derived side", func(t *testing.T) {
		f := newFixture(false)

		res, err := f.resolver.Resolve(context.Background(), Request{
			Ticker:       "AAPL",
			Direction:    model.DirectionBuy,
			PriceSource:  model.PriceSourceLive,
			QuantityType: model.QuantityDollars,
			IntendedSize: dec("500"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.QuoteSourceMock, res.Quote.Source)
		assert.True(t, res.Quote.Price.IsZero())
		assert.True(t, res.Shares.IsZero())
		assert.True(t, res.Dollars.Equal(dec("500")))
		assert.Zero(t, f.market.snapshotCalls)
	})

	t.Run("provider zero price is rejected", func(t *testing.T) {
		f := newFixture(true)
		f.market.snapshot = snapshotAt("0", "")

		_, err := f.resolver.Resolve(context.Background(), Request{
			Ticker:       "AAPL",
			Direction:    model.DirectionBuy,
			PriceSource:  model.PriceSourceLive,
			QuantityType: model.QuantityShares,
			IntendedSize: dec("1"),
		})
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestResolve_Historical(t *testing.T) {
	historical := func(consideredAt *int64) Request {
		return Request{
			Ticker:       "MSFT",
			Direction:    model.DirectionSell,
			PriceSource:  model.PriceSourceHistorical,
			QuantityType: model.QuantityShares,
			IntendedSize: dec("4"),
			ConsideredAt: consideredAt,
		}
	}

	t.Run("consideredAt is required", func(t *testing.T) {
		for _, ticker := range []string{"MSFT", "aapl", "ZZZZ"} {
			for _, configured := range []bool{true, false} {
				f := newFixture(configured)
				req := historical(nil)
				req.Ticker = ticker
				_, err := f.resolver.Resolve(context.Background(), req)
				require.Error(t, err)
				assert.True(t, apperr.IsValidation(err), "ticker %s configured %v", ticker, configured)
			}
		}
	})

	t.Run("beyond the look-back window", func(t *testing.T) {
		for _, configured := range []bool{true, false} {
			f := newFixture(configured)
			at := testNow.AddDate(0, 0, -400).UnixMilli()
			_, err := f.resolver.Resolve(context.Background(), historical(&at))
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.EqualError(t, err, "historical data limited to 365 days")
			assert.Empty(t, f.market.barsCalls)
		}
	})

	t.Run("inside the look-back window", func(t *testing.T) {
		f := newFixture(true)
		f.market.bars = &alpaca.BarsResponse{Bars: []alpaca.Bar{
			{Timestamp: "2024-06-17T04:00:00Z", Close: dec("442.57")},
		}}
		at := testNow.AddDate(0, 0, -364).UnixMilli()

		res, err := f.resolver.Resolve(context.Background(), historical(&at))
		require.NoError(t, err)
		assert.True(t, res.Quote.Price.Equal(dec("442.57")))
		assert.Equal(t, model.QuoteSourceHistorical, res.Quote.Source)
		assert.Equal(t, "2024-06-17T04:00:00Z", res.Quote.ProviderTimestamp)
		assert.Equal(t, at, res.ConsideredAt)
		assert.True(t, res.Dollars.Equal(dec("1770.28")))

		require.Len(t, f.market.barsCalls, 1)
		assert.Equal(t, alpaca.BarsOptions{
			Timeframe: "1Day",
			Start:     "2024-06-17T00:00:00Z",
			End:       "2024-06-18T00:00:00Z",
			Limit:     1,
		}, f.market.barsCalls[0])
	})

	t.Run("projects onto the New York calendar day", func(t *testing.T) {
		f := newFixture(true)
		f.market.bars = &alpaca.BarsResponse{Bars: []alpaca.Bar{{Close: dec("1")}}}
		// 02:00 UTC on the 13th is still the evening of the 12th in New York.
		at := int64Ptr(testNow.AddDate(0, 0, -3).Add(-14 * time.Hour).UnixMilli())

		res, err := f.resolver.Resolve(context.Background(), historical(at))
		require.NoError(t, err)
		require.Len(t, f.market.barsCalls, 1)
		assert.Equal(t, "2025-06-12T00:00:00Z", f.market.barsCalls[0].Start)
		assert.Equal(t, "2025-06-12", res.Quote.ProviderTimestamp)
	})

	t.Run("market closed", func(t *testing.T) {
		f := newFixture(true)
		at := testNow.AddDate(0, 0, -2).UnixMilli() // Saturday

		_, err := f.resolver.Resolve(context.Background(), historical(&at))
		require.Error(t, err)
		assert.True(t, apperr.IsUpstream(err))
		assert.Contains(t, err.Error(), "no market data available for 2025-06-14; market may have been closed")
	})

	t.Run("lookups are not cached", func(t *testing.T) {
		f := newFixture(true)
		f.market.bars = &alpaca.BarsResponse{Bars: []alpaca.Bar{{Close: dec("5")}}}
		at := testNow.AddDate(0, 0, -1).UnixMilli()

		for i := 0; i < 3; i++ {
			_, err := f.resolver.Resolve(context.Background(), historical(&at))
			require.NoError(t, err)
		}
		assert.Len(t, f.market.barsCalls, 3)
		assert.Zero(t, f.store.Len())
	})
}

func TestConvert_RoundTrip(t *testing.T) {
	prices := []string{"0.0001", "1", "3", "150", "187.25", "4321.987"}
	sizes := []string{"0", "1", "2.5", "10", "333.33333333"}

	tolerance := dec("0.00000001")
	for _, p := range prices {
		for _, s := range sizes {
			quote := model.Quote{Price: dec(p), Source: model.QuoteSourceManual}

			_, dollars, err := convert(model.QuantityShares, dec(s), quote)
			require.NoError(t, err)
			shares, _, err := convert(model.QuantityDollars, dollars, quote)
			require.NoError(t, err)

			diff := shares.Sub(dec(s)).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance), "price %s shares %s: got %s", p, s, shares)
		}
	}
}
