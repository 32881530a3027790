package postgres

import (
	"context"

	"pnl-dashboard/internal/storage"
)

// KVStore implements storage.KVStore using PostgreSQL.
type KVStore struct {
	pool *Pool
}

// NewKVStore creates a new KVStore. The kv_store table must exist.
func NewKVStore(pool *Pool) *KVStore {
	return &KVStore{pool: pool}
}

// Compile-time interface check.
var _ storage.KVStore = (*KVStore)(nil)

// Get retrieves the value for key. Returns ErrNotFound if not exists.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return nil, classify("get", key, err)
	}
	return value, nil
}

// Put upserts the value for key.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return classify("put", key, err)
	}
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return classify("delete", key, err)
	}
	return nil
}

// Close closes the pool.
func (s *KVStore) Close() error {
	s.pool.Close()
	return nil
}
