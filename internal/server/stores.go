package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/phantom-ledger/internal/config"
	"github.com/rickgao/phantom-ledger/internal/database"
	"github.com/rickgao/phantom-ledger/internal/kv"
)

// Stores are the two item-store namespaces.
type Stores struct {
	App   kv.Store
	Cache kv.Store

	// Expirer purges the cache namespace. Nil when the backend expires items
	// itself.
	Expirer kv.Expirer

	close func()
}

// Close releases backend connections.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Ping checks the app namespace's backend.
func (s *Stores) Ping(ctx context.Context) error {
	if p, ok := s.App.(kv.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// OpenStores connects the configured backend. Every store call is bounded by
// store.timeout.
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	var (
		app, cache kv.Store
		closeFn    func()
	)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		app, cache = kv.NewMemoryStore(), kv.NewMemoryStore()

	case config.BackendPostgres:
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		db := database.OpenDB(pool)
		app = kv.NewPostgresStore(db, cfg.Store.AppTable)
		cache = kv.NewPostgresStore(db, cfg.Store.CacheTable)
		closeFn = func() {
			db.Close()
			pool.Close()
		}

	case config.BackendDynamoDB:
		client, err := kv.NewDynamoClient(ctx, cfg.DynamoDB.Region, cfg.DynamoDB.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("dynamodb client: %w", err)
		}
		app = kv.NewDynamoStore(client, cfg.Store.AppTable)
		cache = kv.NewDynamoStore(client, cfg.Store.CacheTable)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	s := &Stores{
		App:   kv.WithTimeout(app, cfg.Store.Timeout),
		Cache: kv.WithTimeout(cache, cfg.Store.Timeout),
		close: closeFn,
	}
	if cfg.Store.Backend != config.BackendDynamoDB {
		if e, ok := s.Cache.(kv.Expirer); ok {
			s.Expirer = e
		}
	}

	logger.Info("item stores ready",
		"backend", cfg.Store.Backend,
		"app_table", cfg.Store.AppTable,
		"cache_table", cfg.Store.CacheTable,
	)
	return s, nil
}
