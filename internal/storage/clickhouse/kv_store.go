package clickhouse

import (
	"context"
	"fmt"
	"time"

	"pnl-dashboard/internal/storage"
)

// KVStore implements storage.KVStore on a ReplacingMergeTree table.
// Each write inserts a new row with a larger version; deletes insert a tombstone.
// Reads use FINAL so only the latest version per key is visible.
type KVStore struct {
	conn *Conn
	now  func() time.Time
}

// NewKVStore creates a new KVStore. The kv_store table must exist.
func NewKVStore(conn *Conn) *KVStore {
	return &KVStore{conn: conn, now: time.Now}
}

// Compile-time interface check.
var _ storage.KVStore = (*KVStore)(nil)

// Get retrieves the latest value for key. Returns ErrNotFound if missing or deleted.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	rows, err := s.conn.Query(ctx, `SELECT value, deleted FROM kv_store FINAL WHERE key = ? LIMIT 1`, key)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate %s: %w", key, err)
		}
		return nil, storage.ErrNotFound
	}

	var (
		value   string
		deleted uint8
	)
	if err := rows.Scan(&value, &deleted); err != nil {
		return nil, fmt.Errorf("scan %s: %w", key, err)
	}
	if deleted != 0 {
		return nil, storage.ErrNotFound
	}
	return []byte(value), nil
}

// Put inserts a new version of key.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return storage.ErrInvalidInput
	}
	return s.write(ctx, key, value, 0)
}

// Delete inserts a tombstone for key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	return s.write(ctx, key, nil, 1)
}

func (s *KVStore) write(ctx context.Context, key string, value []byte, deleted uint8) error {
	version := uint64(s.now().UnixNano())
	err := s.conn.Exec(ctx,
		`INSERT INTO kv_store (key, value, deleted, version) VALUES (?, ?, ?, ?)`,
		key, string(value), deleted, version,
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Close closes the connection.
func (s *KVStore) Close() error {
	return s.conn.Close()
}
