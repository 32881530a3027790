// Package dashboard composes the strategy store, persistence, the sheets client and
// the analytics engines into the operations the API and scheduler call.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/observability"
	"pnl-dashboard/internal/persist"
	"pnl-dashboard/internal/strategy"
)

var (
	// ErrNotSheetsSource is returned when a sheets refresh targets a file-backed strategy.
	ErrNotSheetsSource = errors.New("strategy is not connected to a spreadsheet")

	// ErrSheetsUnavailable is returned when no sheets client is configured.
	ErrSheetsUnavailable = errors.New("spreadsheet access is not configured")

	// ErrSheetsFetch wraps every failure to read a spreadsheet range.
	ErrSheetsFetch = errors.New("fetch spreadsheet")
)

// SheetsFetcher reads a spreadsheet range as a cell grid.
type SheetsFetcher interface {
	FetchValues(ctx context.Context, token, spreadsheetID, rangeA1 string) ([][]domain.Cell, error)
}

// Options configures a Service.
type Options struct {
	Logger    *zap.Logger
	Now       func() time.Time
	Publisher Publisher
	Sheets    SheetsFetcher
}

// Service is the application facade over the strategy store.
type Service struct {
	store     *strategy.Store
	repo      *persist.Repository
	sheets    SheetsFetcher
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time

	// persistMu orders snapshot+save pairs so an older snapshot never overwrites a newer one.
	persistMu sync.Mutex
}

// New creates a service. A nil repo keeps state in memory only.
func New(store *strategy.Store, repo *persist.Repository, opts Options) *Service {
	s := &Service{
		store:     store,
		repo:      repo,
		sheets:    opts.Sheets,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Mutation is the result of a state-changing call. Warning is set when the change
// was applied in memory but could not be persisted.
type Mutation struct {
	Strategy domain.Strategy `json:"strategy"`
	Skipped  int             `json:"skipped,omitempty"`
	Total    int             `json:"total,omitempty"`
	Warning  string          `json:"warning,omitempty"`
}

// Load restores persisted state into the store.
func (s *Service) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	state, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	s.store.Restore(state)
	observability.SetStrategies(s.store.Len())
	s.logger.Info("dashboard state restored",
		zap.Int("strategies", s.store.Len()),
		zap.String("current", s.store.CurrentID()),
	)
	return nil
}

// persistStrategies writes the strategy list and returns a warning on failure.
func (s *Service) persistStrategies(ctx context.Context) string {
	observability.SetStrategies(s.store.Len())
	if s.repo == nil {
		return ""
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	state := s.store.State()
	if err := s.repo.SaveStrategies(ctx, state.Strategies, state.CurrentID); err != nil {
		return s.persistWarning("save_strategies", err)
	}
	return ""
}

// persistInstruments writes the instrument library and returns a warning on failure.
func (s *Service) persistInstruments(ctx context.Context) string {
	if s.repo == nil {
		return ""
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.repo.SaveInstruments(ctx, s.store.Instruments()); err != nil {
		return s.persistWarning("save_instruments", err)
	}
	return ""
}

func (s *Service) persistWarning(op string, err error) string {
	observability.RecordPersistError(op)
	s.logger.Warn("failed to persist state", zap.String("operation", op), zap.Error(err))
	return "changes applied but not saved: " + err.Error()
}

func (s *Service) publish(t EventType, strategyID string) {
	s.publisher.Publish(Event{Type: t, StrategyID: strategyID, At: s.now().UTC()})
}

// finish persists the strategy list and publishes t for a successful mutation.
func (s *Service) finish(ctx context.Context, t EventType, st domain.Strategy) Mutation {
	m := Mutation{Strategy: st, Warning: s.persistStrategies(ctx)}
	s.publish(t, st.ID)
	return m
}

// List returns every strategy.
func (s *Service) List() []domain.Strategy {
	return s.store.List()
}

// Get returns one strategy.
func (s *Service) Get(id string) (domain.Strategy, error) {
	return s.store.Get(id)
}

// Current returns the current strategy id, or "" when there is none.
func (s *Service) CurrentID() string {
	return s.store.CurrentID()
}

// PLType returns the global P&L type.
func (s *Service) PLType() domain.PLType {
	return s.store.PLType()
}

// Switch makes id the current strategy.
func (s *Service) Switch(ctx context.Context, id string) (Mutation, error) {
	st, err := s.store.Switch(id)
	if err != nil {
		return Mutation{}, err
	}
	return s.finish(ctx, EventStrategySwitched, st), nil
}

// Delete removes a strategy.
func (s *Service) Delete(ctx context.Context, id string) (Mutation, error) {
	st, err := s.store.Get(id)
	if err != nil {
		return Mutation{}, err
	}
	if err := s.store.Delete(id); err != nil {
		return Mutation{}, err
	}
	s.logger.Info("strategy deleted", zap.String("strategy_id", id), zap.String("name", st.Name))
	return s.finish(ctx, EventStrategyDeleted, st), nil
}

// Rename sets a strategy's display name.
func (s *Service) Rename(ctx context.Context, id, name string) (Mutation, error) {
	st, err := s.store.Rename(id, name)
	if err != nil {
		return Mutation{}, err
	}
	return s.finish(ctx, EventStrategyUpdated, st), nil
}

// SetCapital changes the capital base.
func (s *Service) SetCapital(ctx context.Context, id string, capital float64) (Mutation, error) {
	st, err := s.store.SetCapital(id, capital)
	if err != nil {
		return Mutation{}, err
	}
	return s.finish(ctx, EventStrategyUpdated, st), nil
}

// SetYear selects a year filter and clears the month filter.
func (s *Service) SetYear(ctx context.Context, id, year string) (Mutation, error) {
	st, err := s.store.SetYear(id, year)
	if err != nil {
		return Mutation{}, err
	}
	return s.finish(ctx, EventStrategyUpdated, st), nil
}

// SetMonth selects a month filter.
func (s *Service) SetMonth(ctx context.Context, id string, month *domain.MonthFilter) (Mutation, error) {
	st, err := s.store.SetMonth(id, month)
	if err != nil {
		return Mutation{}, err
	}
	return s.finish(ctx, EventStrategyUpdated, st), nil
}

// ClearMonth removes the month filter.
func (s *Service) ClearMonth(ctx context.Context, id string) (Mutation, error) {
	st, err := s.store.ClearMonth(id)
	if err != nil {
		return Mutation{}, err
	}
	return s.finish(ctx, EventStrategyUpdated, st), nil
}

// SetPLType switches between gross and net for every view. It is not persisted.
func (s *Service) SetPLType(_ context.Context, plType domain.PLType) error {
	if err := s.store.SetPLType(plType); err != nil {
		return err
	}
	s.publish(EventPLTypeChanged, "")
	return nil
}
