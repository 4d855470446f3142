// Package quotecache is a TTL cache for market data payloads, stored entirely
// in the cache namespace of the item store.
//
// There is no in-process layer: every Get reads the store, so entries survive
// restarts and are shared between instances. Concurrent misses for the same
// key each fetch and each write; the last write wins.
package quotecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/phantom-ledger/internal/kv"
	"github.com/rickgao/phantom-ledger/internal/model"
)

// Attribute names of a cache item.
const (
	attrPayload   = "payload"
	attrFetchedAt = "fetchedAt"
	attrExpiresAt = "expiresAt"
	attrSource    = "source"
)

// Key addresses a cache entry.
type Key struct {
	PK string
	SK string
}

// LatestPriceKey is the key of an instrument's live quote.
func LatestPriceKey(symbol string) Key {
	return Key{PK: model.MarketPK(symbol), SK: model.LatestPriceSK}
}

// TimeSeriesKey is the key of an instrument's candle set.
func TimeSeriesKey(symbol, interval, rng string) Key {
	return Key{PK: model.MarketPK(symbol), SK: model.TimeSeriesSK(interval, rng)}
}

// Cache reads and writes CacheEntry items.
type Cache struct {
	store  kv.Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a cache over store.
func New(store kv.Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the payload at key. The bool is false on a miss: no entry, or
// an entry whose expiresAt is not after now.
func (c *Cache) Get(ctx context.Context, key Key) (map[string]any, bool, error) {
	entry, ok, err := c.Entry(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	if entry.Expired(c.now()) {
		c.logger.Debug("cache entry expired", "pk", key.PK, "sk", key.SK, "expires_at", entry.ExpiresAt)
		return nil, false, nil
	}
	return entry.Payload, true, nil
}

// Entry returns the raw entry at key, expired or not.
func (c *Cache) Entry(ctx context.Context, key Key) (model.CacheEntry, bool, error) {
	item, ok, err := c.store.Get(ctx, key.PK, key.SK)
	if err != nil {
		return model.CacheEntry{}, false, fmt.Errorf("cache get %s/%s: %w", key.PK, key.SK, err)
	}
	if !ok {
		return model.CacheEntry{}, false, nil
	}

	expiresAt, err := item.Attrs.Int64(attrExpiresAt)
	if err != nil {
		return model.CacheEntry{}, false, fmt.Errorf("cache get %s/%s: %w", key.PK, key.SK, err)
	}

	return model.CacheEntry{
		PK:        item.PK,
		SK:        item.SK,
		Payload:   item.Attrs.Map(attrPayload),
		FetchedAt: item.Attrs.String(attrFetchedAt),
		ExpiresAt: expiresAt,
		Source:    item.Attrs.String(attrSource),
	}, true, nil
}

// Put writes payload at key, expiring ttl from now. Sub-second TTLs round up
// to one second.
func (c *Cache) Put(ctx context.Context, key Key, payload map[string]any, ttl time.Duration, source string) (model.CacheEntry, error) {
	if ttl <= 0 {
		return model.CacheEntry{}, errors.New("cache ttl must be positive")
	}

	now := c.now()
	ttlSeconds := int64((ttl + time.Second - 1) / time.Second)
	entry := model.CacheEntry{
		PK:        key.PK,
		SK:        key.SK,
		Payload:   payload,
		FetchedAt: now.UTC().Format(time.RFC3339),
		ExpiresAt: now.Unix() + ttlSeconds,
		Source:    source,
	}

	err := c.store.Put(ctx, kv.Item{
		PK:         key.PK,
		SK:         key.SK,
		EntityType: model.EntityCache,
		Attrs: kv.Attrs{
			attrPayload:   payload,
			attrFetchedAt: entry.FetchedAt,
			attrExpiresAt: entry.ExpiresAt,
			attrSource:    source,
		},
	})
	if err != nil {
		return model.CacheEntry{}, fmt.Errorf("cache put %s/%s: %w", key.PK, key.SK, err)
	}

	c.logger.Debug("cache entry written", "pk", key.PK, "sk", key.SK, "ttl_seconds", ttlSeconds)
	return entry, nil
}

// Invalidate removes the entry at key.
func (c *Cache) Invalidate(ctx context.Context, key Key) error {
	if err := c.store.Delete(ctx, key.PK, key.SK); err != nil {
		return fmt.Errorf("cache delete %s/%s: %w", key.PK, key.SK, err)
	}
	return nil
}
