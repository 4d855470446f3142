package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type itemKey struct {
	pk, sk string
}

// MemoryStore keeps items in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[itemKey]Item
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[itemKey]Item)}
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, pk, sk string) (Item, bool, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, false, err
	}

	m.mu.RLock()
	item, ok := m.items[itemKey{pk, sk}]
	m.mu.RUnlock()
	if !ok {
		return Item{}, false, nil
	}

	attrs, err := normalize(item.Attrs)
	if err != nil {
		return Item{}, false, err
	}
	item.Attrs = attrs
	return item, true, nil
}

// Put implements Store.
func (m *MemoryStore) Put(ctx context.Context, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attrs, err := normalize(item.Attrs)
	if err != nil {
		return err
	}
	item.Attrs = attrs

	m.mu.Lock()
	m.items[itemKey{item.PK, item.SK}] = item
	m.mu.Unlock()
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, pk, sk string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.items, itemKey{pk, sk})
	m.mu.Unlock()
	return nil
}

// Query implements Store.
func (m *MemoryStore) Query(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	var out []Item
	for k, item := range m.items {
		if k.pk == pk && strings.HasPrefix(k.sk, skPrefix) {
			out = append(out, item)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].SK > out[j].SK })

	for i := range out {
		attrs, err := normalize(out[i].Attrs)
		if err != nil {
			return nil, err
		}
		out[i].Attrs = attrs
	}
	return out, nil
}

// PurgeExpired implements Expirer for items carrying an expiresAt attribute.
func (m *MemoryStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for k, item := range m.items {
		exp, err := item.Attrs.Int64Ptr("expiresAt")
		if err != nil || exp == nil {
			continue
		}
		if *exp <= now.Unix() {
			delete(m.items, k)
			n++
		}
	}
	return n, nil
}

// Ping implements Pinger.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored items.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
