// Package persist saves and restores the dashboard state as whole documents in a
// storage.KVStore.
package persist

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/storage"
	"pnl-dashboard/internal/strategy"
)

// Storage keys. Each holds one complete document.
const (
	KeyStrategies  = "tradingStrategies"
	KeyCurrentID   = "currentStrategyId"
	KeyInstruments = "instrumentsLibrary"
)

// Options configures a Repository.
type Options struct {
	Logger *zap.Logger
}

// Repository reads and writes strategy.State through a KVStore.
type Repository struct {
	kv     storage.KVStore
	codec  Codec
	logger *zap.Logger
}

// NewRepository creates a repository. A nil codec means JSON.
func NewRepository(kv storage.KVStore, codec Codec, opts Options) *Repository {
	if codec == nil {
		codec = JSONCodec{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{kv: kv, codec: codec, logger: logger}
}

// SaveStrategies replaces the strategy list and the current id.
func (r *Repository) SaveStrategies(ctx context.Context, strategies []domain.Strategy, currentID string) error {
	if strategies == nil {
		strategies = []domain.Strategy{}
	}
	data, err := r.codec.Marshal(strategies)
	if err != nil {
		return fmt.Errorf("encode strategies: %w", err)
	}
	if err := r.kv.Put(ctx, KeyStrategies, data); err != nil {
		return fmt.Errorf("save strategies: %w", err)
	}

	if currentID == "" {
		if err := r.kv.Delete(ctx, KeyCurrentID); err != nil {
			return fmt.Errorf("clear current strategy: %w", err)
		}
		return nil
	}
	if err := r.kv.Put(ctx, KeyCurrentID, []byte(currentID)); err != nil {
		return fmt.Errorf("save current strategy: %w", err)
	}
	return nil
}

// SaveInstruments replaces the instrument library.
func (r *Repository) SaveInstruments(ctx context.Context, instruments []domain.Instrument) error {
	if instruments == nil {
		instruments = []domain.Instrument{}
	}
	data, err := r.codec.Marshal(instruments)
	if err != nil {
		return fmt.Errorf("encode instruments: %w", err)
	}
	if err := r.kv.Put(ctx, KeyInstruments, data); err != nil {
		return fmt.Errorf("save instruments: %w", err)
	}
	return nil
}

// Save writes the complete state.
func (r *Repository) Save(ctx context.Context, state strategy.State) error {
	if err := r.SaveStrategies(ctx, state.Strategies, state.CurrentID); err != nil {
		return err
	}
	return r.SaveInstruments(ctx, state.Instruments)
}

// Load reads the complete state. Missing keys yield empty collections.
// Undecodable documents are logged and treated as empty; store errors are returned.
func (r *Repository) Load(ctx context.Context) (strategy.State, error) {
	var (
		state strategy.State
		err   error
	)

	if state.Strategies, err = loadList[domain.Strategy](ctx, r, KeyStrategies); err != nil {
		return strategy.State{}, err
	}
	if state.Instruments, err = loadList[domain.Instrument](ctx, r, KeyInstruments); err != nil {
		return strategy.State{}, err
	}

	id, err := r.kv.Get(ctx, KeyCurrentID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return strategy.State{}, fmt.Errorf("load current strategy: %w", err)
	default:
		state.CurrentID = string(id)
	}

	for i := range state.Strategies {
		for j := range state.Strategies[i].AllTrades {
			t := &state.Strategies[i].AllTrades[j]
			t.Date = t.Date.UTC()
		}
	}

	r.logger.Info("state loaded",
		zap.Int("strategies", len(state.Strategies)),
		zap.Int("instruments", len(state.Instruments)),
		zap.String("codec", r.codec.Name()),
	)
	return state, nil
}

func loadList[T any](ctx context.Context, r *Repository, key string) ([]T, error) {
	data, err := r.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var out []T
	if err := r.codec.Unmarshal(data, &out); err != nil {
		r.logger.Warn("discarding undecodable document",
			zap.String("key", key),
			zap.String("codec", r.codec.Name()),
			zap.Error(err),
		)
		return nil, nil
	}
	return out, nil
}
