package memory

import (
	"context"
	"errors"
	"testing"

	"pnl-dashboard/internal/storage"
)

func TestKVStore_PutAndGet(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	if err := store.Put(ctx, "tradingStrategies", []byte(`[]`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "tradingStrategies")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("value mismatch: got %q, want %q", got, "[]")
	}
}

func TestKVStore_NotFound(t *testing.T) {
	store := NewKVStore()

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestKVStore_Overwrite(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	_ = store.Put(ctx, "k", []byte("one"))
	_ = store.Put(ctx, "k", []byte("two"))

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "two" {
		t.Errorf("expected overwrite, got %q", got)
	}
}

func TestKVStore_CopiesValues(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	value := []byte("abc")
	_ = store.Put(ctx, "k", value)
	value[0] = 'x'

	got, _ := store.Get(ctx, "k")
	got[1] = 'y'

	again, _ := store.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value was aliased: %q", again)
	}
}

func TestKVStore_Delete(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	_ = store.Put(ctx, "k", []byte("v"))
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestKVStore_EmptyKey(t *testing.T) {
	store := NewKVStore()
	if err := store.Put(context.Background(), "", []byte("v")); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
