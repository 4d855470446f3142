// Package database provides PostgreSQL connectivity for the postgres store
// backend.
//
//   - Connect: pgx connection pool from config
//   - OpenDB: database/sql handle over the pool, used by kv.PostgresStore
//   - Migrate: goose migrations embedded from migrations/
package database
