package pricing

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/rickgao/phantom-ledger/internal/alpaca"
	"github.com/rickgao/phantom-ledger/internal/kv"
	"github.com/rickgao/phantom-ledger/internal/quotecache"
	"github.com/shopspring/decimal"
)

type fakeMarket struct {
	configured bool

	snapshot    *alpaca.SnapshotResponse
	snapshotErr error
	bars        *alpaca.BarsResponse
	barsErr     error
	asset       *alpaca.Asset
	assetErr    error

	snapshotCalls int
	barsCalls     []alpaca.BarsOptions
	assetCalls    int
}

func (f *fakeMarket) Configured() bool { return f.configured }

func (f *fakeMarket) GetSnapshot(ctx context.Context, symbol string) (*alpaca.SnapshotResponse, error) {
	f.snapshotCalls++
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	return f.snapshot, nil
}

func (f *fakeMarket) GetBars(ctx context.Context, symbol string, opts alpaca.BarsOptions) (*alpaca.BarsResponse, error) {
	f.barsCalls = append(f.barsCalls, opts)
	if f.barsErr != nil {
		return nil, f.barsErr
	}
	if f.bars == nil {
		return &alpaca.BarsResponse{Symbol: symbol}, nil
	}
	return f.bars, nil
}

func (f *fakeMarket) GetAsset(ctx context.Context, symbol string) (*alpaca.Asset, error) {
	f.assetCalls++
	if f.assetErr != nil {
		return nil, f.assetErr
	}
	return f.asset, nil
}

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// testNow is Monday 2025-06-16, noon in New York.
var testNow = time.Date(2025, 6, 16, 16, 0, 0, 0, time.UTC)

type fixture struct {
	resolver *Resolver
	market   *fakeMarket
	clock    *testClock
	store    *kv.MemoryStore
}

func newFixture(configured bool) *fixture {
	clock := &testClock{t: testNow}
	store := kv.NewMemoryStore()
	market := &fakeMarket{configured: configured}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := quotecache.New(store, quotecache.WithClock(clock.Now), quotecache.WithLogger(logger))
	return &fixture{
		resolver: NewResolver(market, cache, WithClock(clock.Now), WithLogger(logger)),
		market:   market,
		clock:    clock,
		store:    store,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func int64Ptr(n int64) *int64 {
	return &n
}

func snapshotAt(price, ts string) *alpaca.SnapshotResponse {
	return &alpaca.SnapshotResponse{
		LatestTrade: &alpaca.Trade{Price: decPtr(price), Timestamp: ts},
	}
}
