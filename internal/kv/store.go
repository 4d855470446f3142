// Package kv provides the composite-key item store every other component
// persists through.
//
// Items are addressed by a partition key (pk) and a sort key (sk). Query
// returns a partition's items in descending sort-key order, optionally
// bounded by a sort-key prefix. The store never applies a limit; callers cap
// results with Limit.
//
// Backends:
//   - MemoryStore: process-local, for tests and local runs
//   - PostgresStore: one table per namespace, attributes in a jsonb column
//   - DynamoStore: one DynamoDB table per namespace, attributes flattened
package kv

import (
	"context"
	"fmt"
)

// Item is a single stored record.
type Item struct {
	PK         string
	SK         string
	EntityType string
	Attrs      Attrs
}

// Store is the persistence contract shared by all backends.
type Store interface {
	// Get returns the item at (pk, sk). The bool is false when absent.
	Get(ctx context.Context, pk, sk string) (Item, bool, error)

	// Put overwrites the item at (item.PK, item.SK) in full.
	Put(ctx context.Context, item Item) error

	// Delete removes the item at (pk, sk). Deleting an absent item is not an error.
	Delete(ctx context.Context, pk, sk string) error

	// Query returns every item in pk whose sort key starts with skPrefix,
	// newest (greatest sort key) first. An empty prefix matches all.
	Query(ctx context.Context, pk, skPrefix string) ([]Item, error)
}

// Pinger is implemented by stores that can check their backend's health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Limit returns at most the first n items. n <= 0 means no cap.
func Limit[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// Codec maps an entity to and from an Item.
type Codec[T any] interface {
	Encode(v T) (Item, error)
	Decode(item Item) (T, error)
}

// Table is a typed view of a Store.
type Table[T any] struct {
	store Store
	codec Codec[T]
}

// NewTable binds a codec to a store.
func NewTable[T any](store Store, codec Codec[T]) *Table[T] {
	return &Table[T]{store: store, codec: codec}
}

// Get loads and decodes the entity at (pk, sk).
func (t *Table[T]) Get(ctx context.Context, pk, sk string) (T, bool, error) {
	var zero T

	item, ok, err := t.store.Get(ctx, pk, sk)
	if err != nil || !ok {
		return zero, false, err
	}

	v, err := t.codec.Decode(item)
	if err != nil {
		return zero, false, fmt.Errorf("decode %s/%s: %w", pk, sk, err)
	}
	return v, true, nil
}

// Put encodes and overwrites v.
func (t *Table[T]) Put(ctx context.Context, v T) error {
	item, err := t.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	return t.store.Put(ctx, item)
}

// Query decodes at most limit items of the descending query (limit <= 0: all).
func (t *Table[T]) Query(ctx context.Context, pk, skPrefix string, limit int) ([]T, error) {
	items, err := t.store.Query(ctx, pk, skPrefix)
	if err != nil {
		return nil, err
	}

	items = Limit(items, limit)
	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := t.codec.Decode(item)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", item.PK, item.SK, err)
		}
		out = append(out, v)
	}
	return out, nil
}
