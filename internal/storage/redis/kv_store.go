// Package redis stores dashboard documents in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pnl-dashboard/internal/storage"
)

// KVStore implements storage.KVStore on Redis strings. Keys carry a prefix so
// several dashboards can share one database.
type KVStore struct {
	Client *redis.Client
	prefix string
}

// Compile-time interface check.
var _ storage.KVStore = (*KVStore)(nil)

// NewKVStore creates a store from a redis:// URL and verifies the connection.
func NewKVStore(ctx context.Context, url, prefix string) (*KVStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &KVStore{Client: client, prefix: prefix}, nil
}

func (s *KVStore) key(k string) string {
	return s.prefix + k
}

// Get retrieves the value for key. Returns ErrNotFound if not exists.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.Client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return b, nil
}

// Put stores value without expiry.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return storage.ErrInvalidInput
	}
	if err := s.Client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.Client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (s *KVStore) Close() error {
	return s.Client.Close()
}
