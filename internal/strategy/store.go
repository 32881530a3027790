// Package strategy holds the application state: strategies, the current selection,
// the global P&L type and the instrument library.
//
// Every method returns copies, so callers never alias the store's slices.
// Each mutation recomputes the affected derived views before releasing the lock.
package strategy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/filter"
	"pnl-dashboard/internal/normalization"
)

// Options configures a Store.
type Options struct {
	Now   func() time.Time
	NewID func(prefix string) string
}

// CreateParams describes a new strategy.
type CreateParams struct {
	Name     string
	FileName string
	Capital  float64
	Mapping  domain.ColumnMapping
	Trades   []domain.TradeRecord
	Source   *domain.Source
}

// State is the persisted form of the store.
type State struct {
	Strategies  []domain.Strategy   `json:"strategies"`
	CurrentID   string              `json:"currentStrategyId"`
	Instruments []domain.Instrument `json:"instruments"`
}

// Store is the mutex-guarded application state.
type Store struct {
	mu          sync.RWMutex
	strategies  []domain.Strategy
	currentID   string
	plType      domain.PLType
	instruments []domain.Instrument

	now   func() time.Time
	newID func(prefix string) string
}

// NewStore creates an empty store with the NET P&L type selected.
func NewStore(opts Options) *Store {
	s := &Store{plType: domain.PLTypeNet, now: opts.Now, newID: opts.NewID}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = NewID
	}
	return s
}

// Create adds a strategy and makes it current.
func (s *Store) Create(p CreateParams) (domain.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.strategies) >= domain.MaxStrategies {
		return domain.Strategy{}, ErrCapacity
	}

	name := cleanName(p.Name)
	if name == "" {
		name = fmt.Sprintf("Strategy %d", len(s.strategies)+1)
	}
	capital := p.Capital
	if !validCapital(capital) {
		capital = domain.DefaultCapital
	}
	source := domain.FileSource()
	if p.Source != nil {
		source = p.Source.Clone()
		if !source.Type.IsValid() {
			source.Type = domain.SourceTypeFile
		}
	}

	st := domain.Strategy{
		ID:            s.newID(StrategyIDPrefix),
		Name:          name,
		FileName:      p.FileName,
		LastUpdated:   s.now().UTC(),
		Capital:       capital,
		ColumnMapping: p.Mapping.Clone(),
		AllTrades:     domain.CloneTrades(p.Trades),
		SelectedYear:  domain.YearAll,
		Source:        source,
	}
	st.Trades = filter.View(st, s.plType)

	s.strategies = append(s.strategies, st)
	s.currentID = st.ID
	return st.Clone(), nil
}

func validCapital(c float64) bool {
	return c > 0 && !math.IsNaN(c) && !math.IsInf(c, 0)
}

// cleanName trims whitespace and truncates to MaxNameLength runes.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > domain.MaxNameLength {
		name = string([]rune(name)[:domain.MaxNameLength])
	}
	return name
}

func (s *Store) indexOf(id string) int {
	for i := range s.strategies {
		if s.strategies[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns a strategy by id.
func (s *Store) Get(id string) (domain.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Strategy{}, ErrNotFound
	}
	return s.strategies[i].Clone(), nil
}

// Snapshot returns a strategy and the P&L type its view was computed under, read in
// one lock section. An empty id selects the current strategy.
func (s *Store) Snapshot(id string) (domain.Strategy, domain.PLType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == "" {
		if s.currentID == "" {
			return domain.Strategy{}, s.plType, ErrNoCurrent
		}
		id = s.currentID
	}
	i := s.indexOf(id)
	if i < 0 {
		return domain.Strategy{}, s.plType, ErrNotFound
	}
	return s.strategies[i].Clone(), s.plType, nil
}

// List returns all strategies in creation order.
func (s *Store) List() []domain.Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Strategy, len(s.strategies))
	for i := range s.strategies {
		out[i] = s.strategies[i].Clone()
	}
	return out
}

// Len returns the number of strategies.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.strategies)
}

// CurrentID returns the current strategy id, or "" when there is none.
func (s *Store) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// Current returns the current strategy.
func (s *Store) Current() (domain.Strategy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(s.currentID)
	if i < 0 {
		return domain.Strategy{}, false
	}
	return s.strategies[i].Clone(), true
}

// Switch makes id the current strategy.
func (s *Store) Switch(id string) (domain.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Strategy{}, ErrNotFound
	}
	s.currentID = id
	return s.strategies[i].Clone(), nil
}

// update applies fn to the strategy with id under the write lock and refreshes its view.
func (s *Store) update(id string, fn func(st *domain.Strategy) error) (domain.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Strategy{}, ErrNotFound
	}
	st := s.strategies[i].Clone()
	if err := fn(&st); err != nil {
		return domain.Strategy{}, err
	}
	st.Trades = filter.View(st, s.plType)
	s.strategies[i] = st
	return st.Clone(), nil
}

// Rename sets a new display name.
func (s *Store) Rename(id, name string) (domain.Strategy, error) {
	name = cleanName(name)
	if name == "" {
		return domain.Strategy{}, ErrInvalidName
	}
	return s.update(id, func(st *domain.Strategy) error {
		st.Name = name
		return nil
	})
}

// SetCapital changes the capital base of percent calculations.
func (s *Store) SetCapital(id string, capital float64) (domain.Strategy, error) {
	if !validCapital(capital) {
		return domain.Strategy{}, ErrInvalidCapital
	}
	return s.update(id, func(st *domain.Strategy) error {
		st.Capital = capital
		return nil
	})
}

// Delete removes a strategy. When it was current, the first remaining one becomes current.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.strategies = append(s.strategies[:i], s.strategies[i+1:]...)
	if s.currentID == id {
		s.currentID = ""
		if len(s.strategies) > 0 {
			s.currentID = s.strategies[0].ID
		}
	}
	return nil
}

// SetYear selects "ALL" or a 4-digit year and clears the month filter.
func (s *Store) SetYear(id, year string) (domain.Strategy, error) {
	if !validYear(year) {
		return domain.Strategy{}, ErrInvalidYear
	}
	return s.update(id, func(st *domain.Strategy) error {
		st.SelectedYear = year
		st.SelectedMonth = nil
		return nil
	})
}

func validYear(year string) bool {
	if year == domain.YearAll {
		return true
	}
	if len(year) != 4 {
		return false
	}
	_, err := strconv.Atoi(year)
	return err == nil
}

// SetMonth selects a month filter. A nil filter clears it.
func (s *Store) SetMonth(id string, month *domain.MonthFilter) (domain.Strategy, error) {
	if month != nil && (month.Month < 0 || month.Month > 11) {
		return domain.Strategy{}, ErrInvalidMonth
	}
	return s.update(id, func(st *domain.Strategy) error {
		st.SelectedMonth = nil
		if month != nil {
			m := *month
			if month.Year != nil {
				y := *month.Year
				m.Year = &y
			}
			st.SelectedMonth = &m
		}
		return nil
	})
}

// ClearMonth removes the month filter.
func (s *Store) ClearMonth(id string) (domain.Strategy, error) {
	return s.SetMonth(id, nil)
}

// PLType returns the global P&L type.
func (s *Store) PLType() domain.PLType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plType
}

// SetPLType switches the global P&L type and recomputes every view.
func (s *Store) SetPLType(plType domain.PLType) error {
	if !plType.IsValid() {
		return ErrInvalidPLType
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plType = plType
	for i := range s.strategies {
		s.strategies[i].Trades = filter.View(s.strategies[i], plType)
	}
	return nil
}

// ReplaceTrades swaps in freshly ingested trades and resets the selection.
// A non-nil syncedAt is recorded as the last sheets sync in the same update.
func (s *Store) ReplaceTrades(id string, trades []domain.TradeRecord, mapping domain.ColumnMapping, fileName string, syncedAt *time.Time) (domain.Strategy, error) {
	now := s.now().UTC()
	return s.update(id, func(st *domain.Strategy) error {
		st.AllTrades = domain.CloneTrades(trades)
		st.ColumnMapping = mapping.Clone()
		if fileName != "" {
			st.FileName = fileName
		}
		st.SelectedYear = domain.YearAll
		st.SelectedMonth = nil
		st.LastUpdated = now
		if syncedAt != nil {
			at := syncedAt.UTC()
			st.Source.Config.LastSync = &at
		}
		return nil
	})
}

// SetSource replaces the provenance tag.
func (s *Store) SetSource(id string, source domain.Source) (domain.Strategy, error) {
	if !source.Type.IsValid() {
		source.Type = domain.SourceTypeFile
	}
	return s.update(id, func(st *domain.Strategy) error {
		st.Source = source.Clone()
		return nil
	})
}

// LinkInstrument attaches a library instrument as the chart overlay.
func (s *Store) LinkInstrument(id, instrumentID string) (domain.Strategy, error) {
	s.mu.RLock()
	found := s.instrumentIndex(instrumentID) >= 0
	s.mu.RUnlock()
	if !found {
		return domain.Strategy{}, ErrInstrumentNotFound
	}
	return s.update(id, func(st *domain.Strategy) error {
		st.SelectedInstrument = instrumentID
		return nil
	})
}

// UnlinkInstrument removes the overlay.
func (s *Store) UnlinkInstrument(id string) (domain.Strategy, error) {
	return s.update(id, func(st *domain.Strategy) error {
		st.SelectedInstrument = ""
		return nil
	})
}

// ReplaceAll installs an imported strategy list. Entries beyond the cap are dropped and
// missing ids are generated. The first strategy becomes current.
func (s *Store) ReplaceAll(strategies []domain.Strategy) (dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(strategies) > domain.MaxStrategies {
		dropped = len(strategies) - domain.MaxStrategies
		strategies = strategies[:domain.MaxStrategies]
	}
	s.strategies = make([]domain.Strategy, 0, len(strategies))
	for _, st := range strategies {
		s.strategies = append(s.strategies, s.adopt(st, st.ID))
	}
	s.currentID = ""
	if len(s.strategies) > 0 {
		s.currentID = s.strategies[0].ID
	}
	return dropped
}

// Merge appends imported strategies under fresh ids until the cap is reached.
func (s *Store) Merge(strategies []domain.Strategy) (added, dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range strategies {
		if len(s.strategies) >= domain.MaxStrategies {
			dropped++
			continue
		}
		s.strategies = append(s.strategies, s.adopt(st, ""))
		added++
	}
	if s.currentID == "" && len(s.strategies) > 0 {
		s.currentID = s.strategies[0].ID
	}
	return added, dropped
}

// adopt normalizes an external strategy. Caller holds the write lock.
func (s *Store) adopt(st domain.Strategy, id string) domain.Strategy {
	st = st.Clone()
	if id == "" {
		id = s.newID(StrategyIDPrefix)
	}
	st.ID = id
	st.Name = cleanName(st.Name)
	if st.Name == "" {
		st.Name = fmt.Sprintf("Strategy %d", len(s.strategies)+1)
	}
	if !validCapital(st.Capital) {
		st.Capital = domain.DefaultCapital
	}
	if !validYear(st.SelectedYear) {
		st.SelectedYear = domain.YearAll
	}
	if !st.Source.Type.IsValid() {
		st.Source.Type = domain.SourceTypeFile
	}
	normalization.SortTrades(st.AllTrades)
	st.Trades = filter.View(st, s.plType)
	return st
}

// Restore replaces the whole state, typically after loading it from storage.
func (s *Store) Restore(state State) {
	s.ReplaceAll(state.Strategies)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(state.CurrentID) >= 0 {
		s.currentID = state.CurrentID
	}
	s.instruments = make([]domain.Instrument, 0, len(state.Instruments))
	for _, in := range state.Instruments {
		s.instruments = append(s.instruments, in.Clone())
	}
}

// State returns a snapshot for persistence.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Strategies:  make([]domain.Strategy, len(s.strategies)),
		CurrentID:   s.currentID,
		Instruments: make([]domain.Instrument, len(s.instruments)),
	}
	for i := range s.strategies {
		st.Strategies[i] = s.strategies[i].Clone()
	}
	for i := range s.instruments {
		st.Instruments[i] = s.instruments[i].Clone()
	}
	return st
}
