package kv

import (
	"context"
	"time"
)

// Expirer is implemented by stores that can drop expired cache items
// themselves. DynamoDB does this natively through its TTL attribute.
type Expirer interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type timeoutStore struct {
	next Store
	d    time.Duration
}

// WithTimeout bounds every call to s by d. d <= 0 returns s unchanged.
func WithTimeout(s Store, d time.Duration) Store {
	if d <= 0 {
		return s
	}
	return &timeoutStore{next: s, d: d}
}

func (t *timeoutStore) Get(ctx context.Context, pk, sk string) (Item, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Get(ctx, pk, sk)
}

func (t *timeoutStore) Put(ctx context.Context, item Item) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Put(ctx, item)
}

func (t *timeoutStore) Delete(ctx context.Context, pk, sk string) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Delete(ctx, pk, sk)
}

func (t *timeoutStore) Query(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Query(ctx, pk, skPrefix)
}

func (t *timeoutStore) Ping(ctx context.Context) error {
	p, ok := t.next.(Pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return p.Ping(ctx)
}

func (t *timeoutStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	e, ok := t.next.(Expirer)
	if !ok {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return e.PurgeExpired(ctx, now)
}
