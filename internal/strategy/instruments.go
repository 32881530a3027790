package strategy

import (
	"strings"

	"pnl-dashboard/internal/domain"
)

func (s *Store) instrumentIndex(id string) int {
	for i := range s.instruments {
		if s.instruments[i].ID == id {
			return i
		}
	}
	return -1
}

// AddInstrument stores a new reference series in the library.
// Names are unique ignoring case.
func (s *Store) AddInstrument(name string, points []domain.PricePoint) (domain.Instrument, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Instrument{}, ErrInstrumentName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, in := range s.instruments {
		if strings.EqualFold(in.Name, name) {
			return domain.Instrument{}, ErrDuplicateInstrument
		}
	}
	in := domain.Instrument{
		ID:        s.newID(InstrumentIDPrefix),
		Name:      name,
		Data:      append([]domain.PricePoint(nil), points...),
		CreatedAt: s.now().UTC(),
	}
	s.instruments = append(s.instruments, in)
	return in.Clone(), nil
}

// Instruments lists the library.
func (s *Store) Instruments() []domain.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Instrument, len(s.instruments))
	for i := range s.instruments {
		out[i] = s.instruments[i].Clone()
	}
	return out
}

// Instrument returns one library entry.
func (s *Store) Instrument(id string) (domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.instrumentIndex(id)
	if i < 0 {
		return domain.Instrument{}, ErrInstrumentNotFound
	}
	return s.instruments[i].Clone(), nil
}

// DeleteInstrument removes an instrument and unlinks it from every strategy.
func (s *Store) DeleteInstrument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.instrumentIndex(id)
	if i < 0 {
		return ErrInstrumentNotFound
	}
	s.instruments = append(s.instruments[:i], s.instruments[i+1:]...)
	for j := range s.strategies {
		if s.strategies[j].SelectedInstrument == id {
			s.strategies[j].SelectedInstrument = ""
		}
	}
	return nil
}
