package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rickgao/phantom-ledger/internal/database"
)

// PostgresStore keeps one namespace in a table of (pk, sk, entity_type, attrs).
// Sort keys use the "C" collation so ordering is bytewise, as in DynamoDB.
type PostgresStore struct {
	db    database.DBTX
	table string

	getSQL    string
	putSQL    string
	deleteSQL string
	querySQL  string
	purgeSQL  string
}

// NewPostgresStore binds a store to table.
func NewPostgresStore(db database.DBTX, table string) *PostgresStore {
	t := pgx.Identifier{table}.Sanitize()
	return &PostgresStore{
		db:    db,
		table: table,

		getSQL: `SELECT entity_type, attrs FROM ` + t + ` WHERE pk = $1 AND sk = $2`,
		putSQL: `INSERT INTO ` + t + ` (pk, sk, entity_type, attrs) VALUES ($1, $2, $3, $4::jsonb)
ON CONFLICT (pk, sk) DO UPDATE SET entity_type = EXCLUDED.entity_type, attrs = EXCLUDED.attrs`,
		deleteSQL: `DELETE FROM ` + t + ` WHERE pk = $1 AND sk = $2`,
		querySQL:  `SELECT sk, entity_type, attrs FROM ` + t + ` WHERE pk = $1 AND starts_with(sk, $2) ORDER BY sk DESC`,
		purgeSQL:  `DELETE FROM ` + t + ` WHERE attrs ? 'expiresAt' AND (attrs ->> 'expiresAt')::NUMERIC <= $1`,
	}
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, pk, sk string) (Item, bool, error) {
	var (
		entityType string
		raw        []byte
	)
	err := s.db.QueryRowContext(ctx, s.getSQL, pk, sk).Scan(&entityType, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("db error: get %s %s/%s: %w", s.table, pk, sk, err)
	}

	attrs, err := decodeAttrs(raw)
	if err != nil {
		return Item{}, false, err
	}
	return Item{PK: pk, SK: sk, EntityType: entityType, Attrs: attrs}, true, nil
}

// Put implements Store.
func (s *PostgresStore) Put(ctx context.Context, item Item) error {
	attrs := item.Attrs
	if attrs == nil {
		attrs = Attrs{}
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal attrs: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, s.putSQL, item.PK, item.SK, item.EntityType, string(raw)); err != nil {
		return fmt.Errorf("db error: put %s %s/%s: %w", s.table, item.PK, item.SK, err)
	}
	return nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, pk, sk string) error {
	if _, err := s.db.ExecContext(ctx, s.deleteSQL, pk, sk); err != nil {
		return fmt.Errorf("db error: delete %s %s/%s: %w", s.table, pk, sk, err)
	}
	return nil
}

// Query implements Store.
func (s *PostgresStore) Query(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, s.querySQL, pk, skPrefix)
	if err != nil {
		return nil, fmt.Errorf("db error: query %s %s: %w", s.table, pk, err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var (
			sk, entityType string
			raw            []byte
		)
		if err := rows.Scan(&sk, &entityType, &raw); err != nil {
			return nil, fmt.Errorf("db error: scan %s: %w", s.table, err)
		}
		attrs, err := decodeAttrs(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Item{PK: pk, SK: sk, EntityType: entityType, Attrs: attrs})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: iterate %s: %w", s.table, err)
	}
	return out, nil
}

// PurgeExpired deletes items whose expiresAt is at or before now.
func (s *PostgresStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.purgeSQL, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("db error: purge %s: %w", s.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: purge %s: %w", s.table, err)
	}
	return n, nil
}

// Ping implements Pinger when the handle supports it.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if p, ok := s.db.(interface{ PingContext(context.Context) error }); ok {
		return p.PingContext(ctx)
	}
	return nil
}

func decodeAttrs(raw []byte) (Attrs, error) {
	attrs := Attrs{}
	if len(raw) == 0 {
		return attrs, nil
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal attrs: %w", err)
	}
	return attrs, nil
}
