package memory

import (
	"context"
	"sync"

	"pnl-dashboard/internal/storage"
)

// KVStore is an in-memory implementation of storage.KVStore.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKVStore creates a new in-memory key-value store.
func NewKVStore() *KVStore {
	return &KVStore{
		data: make(map[string][]byte),
	}
}

// Compile-time interface check.
var _ storage.KVStore = (*KVStore)(nil)

// Get returns a copy of the stored value.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores a copy of value.
func (s *KVStore) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return storage.ErrInvalidInput
	}

	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = v
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Close is a no-op.
func (s *KVStore) Close() error {
	return nil
}
