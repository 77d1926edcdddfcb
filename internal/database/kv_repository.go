package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

// KVRepository stores JSON documents under string keys.
// It has no cross-key transactions beyond a single Set call.
type KVRepository struct {
	db *sqlx.DB
}

// NewKVRepository creates a new repository instance
func NewKVRepository(db *sqlx.DB) *KVRepository {
	return &KVRepository{db: db}
}

type kvRow struct {
	Key   string `db:"key_name"`
	Value string `db:"value"`
}

// Get returns the stored values for keys; missing keys are absent from the map
func (r *KVRepository) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT key_name, value FROM kv_store WHERE key_name IN (?)`, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to build key query: %w", err)
	}

	var rows []kvRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get keys: %w", err)
	}
	for _, row := range rows {
		out[row.Key] = []byte(row.Value)
	}
	return out, nil
}

// Set writes all values in one transaction
func (r *KVRepository) Set(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.db.Rebind(`
		INSERT INTO kv_store (key_name, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key_name) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, query, k, string(values[k])); err != nil {
			return fmt.Errorf("failed to set key %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Delete removes keys; missing keys are ignored
func (r *KVRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM kv_store WHERE key_name IN (?)`, keys)
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}
