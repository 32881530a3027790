package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnl-dashboard/internal/config"
	"pnl-dashboard/internal/storage/memory"
	"pnl-dashboard/internal/storage/sqlite"
)

func TestOpen_Memory(t *testing.T) {
	kv, err := Open(context.Background(), config.StorageConfig{Driver: config.DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.KVStore{}, kv)
}

func TestOpen_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "state.db")
	kv, err := Open(context.Background(), config.StorageConfig{Driver: config.DriverSQLite, DSN: dsn}, nil)
	require.NoError(t, err)
	defer kv.Close()
	assert.IsType(t, &sqlite.KVStore{}, kv)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "etcd"}, nil)
	assert.Error(t, err)
}
