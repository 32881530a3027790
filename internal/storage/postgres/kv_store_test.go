package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnl-dashboard/internal/storage"
	"pnl-dashboard/internal/storage/migrations"
	"pnl-dashboard/internal/storage/postgres"
)

func TestKVStore_PutGetDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewKVStore(pool)

	_, err := store.Get(ctx, "tradingStrategies")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Put(ctx, "tradingStrategies", []byte(`[{"id":"a"}]`)))
	got, err := store.Get(ctx, "tradingStrategies")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	// Upsert replaces the full document.
	require.NoError(t, store.Put(ctx, "tradingStrategies", []byte(`[]`)))
	got, err = store.Get(ctx, "tradingStrategies")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, store.Delete(ctx, "tradingStrategies"))
	_, err = store.Get(ctx, "tradingStrategies")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunPostgresMigrations_Idempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ran, err := migrations.RunPostgresMigrations(context.Background(), pool)
	require.NoError(t, err)
	assert.Empty(t, ran, "setup already applied every migration")
}
