package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rickgao/phantom-ledger/internal/kv"
)

type failingExpirer struct{}

func (failingExpirer) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, errors.New("boom")
}

func seed(t *testing.T, store *kv.MemoryStore, sk string, expiresAt int64) {
	t.Helper()
	err := store.Put(context.Background(), kv.Item{
		PK:    "MD#AAPL",
		SK:    sk,
		Attrs: kv.Attrs{"expiresAt": expiresAt},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func TestSweeper_SweepAll(t *testing.T) {
	now := time.Date(2025, 6, 16, 16, 0, 0, 0, time.UTC)

	store := kv.NewMemoryStore()
	seed(t, store, "PRICE#latest", now.Unix()-1)
	seed(t, store, "TS#1day#1m", now.Unix())
	seed(t, store, "TS#1hour#5d", now.Unix()+60)

	s := New(Config{}, []Target{
		{Name: "broken", Store: failingExpirer{}},
		{Name: "cache", Store: store},
	}, nil)
	s.now = func() time.Time { return now }
	s.ctx = context.Background()

	s.sweepAll()

	if got := store.Len(); got != 1 {
		t.Errorf("store.Len() = %d, want 1", got)
	}
	if got := s.Purged(); got != 2 {
		t.Errorf("Purged() = %d, want 2", got)
	}
}

func TestSweeper_StartStop(t *testing.T) {
	store := kv.NewMemoryStore()
	seed(t, store, "PRICE#latest", 1)

	s := New(Config{Interval: 10 * time.Millisecond}, []Target{{Name: "cache", Store: store}}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if store.Len() != 0 {
		t.Error("expired item was not swept")
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{}, nil, nil)
	if s.cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want %+v", s.cfg, DefaultConfig())
	}
}
