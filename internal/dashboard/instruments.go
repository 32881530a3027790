package dashboard

import (
	"context"

	"go.uber.org/zap"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/normalization"
)

// InstrumentMutation is the result of adding an instrument.
type InstrumentMutation struct {
	Instrument domain.Instrument `json:"instrument"`
	Skipped    int               `json:"skipped,omitempty"`
	Warning    string            `json:"warning,omitempty"`
}

// Instruments returns the instrument library.
func (s *Service) Instruments() []domain.Instrument {
	return s.store.Instruments()
}

// AddInstrument normalizes a date/close grid and adds it to the library.
func (s *Service) AddInstrument(ctx context.Context, name string, rows [][]domain.Cell) (InstrumentMutation, error) {
	points, skipped, err := normalization.NormalizeInstrument(rows)
	if err != nil {
		return InstrumentMutation{}, err
	}
	inst, err := s.store.AddInstrument(name, points)
	if err != nil {
		return InstrumentMutation{}, err
	}
	s.logger.Info("instrument added",
		zap.String("instrument_id", inst.ID),
		zap.String("name", inst.Name),
		zap.Int("points", len(inst.Data)),
		zap.Int("skipped", skipped),
	)
	m := InstrumentMutation{Instrument: inst, Skipped: skipped, Warning: s.persistInstruments(ctx)}
	s.publish(EventInstrumentsChanged, "")
	return m, nil
}

// DeleteInstrument removes an instrument and unlinks it from every strategy.
func (s *Service) DeleteInstrument(ctx context.Context, id string) (string, error) {
	if err := s.store.DeleteInstrument(id); err != nil {
		return "", err
	}
	warning := s.persistInstruments(ctx)
	if w := s.persistStrategies(ctx); w != "" {
		warning = w
	}
	s.publish(EventInstrumentsChanged, "")
	return warning, nil
}

// LinkInstrument selects an instrument overlay for a strategy.
func (s *Service) LinkInstrument(ctx context.Context, id, instrumentID string) (Mutation, error) {
	st, err := s.store.LinkInstrument(id, instrumentID)
	if err != nil {
		return Mutation{}, err
	}
	return s.finish(ctx, EventStrategyUpdated, st), nil
}

// UnlinkInstrument clears a strategy's overlay.
func (s *Service) UnlinkInstrument(ctx context.Context, id string) (Mutation, error) {
	st, err := s.store.UnlinkInstrument(id)
	if err != nil {
		return Mutation{}, err
	}
	return s.finish(ctx, EventStrategyUpdated, st), nil
}
