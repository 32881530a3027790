package storage

import "context"

// KVStore is a durable key-value store holding whole serialized documents.
// Writes replace the full value; there is no partial update.
type KVStore interface {
	// Get returns the value stored under key. Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying connection.
	Close() error
}
