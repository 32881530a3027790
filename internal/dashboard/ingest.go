package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/normalization"
	"pnl-dashboard/internal/observability"
	"pnl-dashboard/internal/sheets"
	"pnl-dashboard/internal/strategy"
)

// IngestRequest describes a new strategy built from a cell grid.
// When Mapping is nil (or AutoDetect is set) columns are detected from the header row.
type IngestRequest struct {
	Name       string
	FileName   string
	Capital    float64
	Rows       [][]domain.Cell
	Mapping    *domain.ColumnMapping
	AutoDetect bool
	Source     *domain.Source
}

// SheetsRequest describes a new strategy read from a spreadsheet range.
type SheetsRequest struct {
	Name          string
	Capital       float64
	Token         string
	SpreadsheetID string
	SheetName     string
	Range         string
	Mapping       *domain.ColumnMapping
}

func sourceLabel(src *domain.Source) string {
	if src == nil || !src.Type.IsValid() {
		return domain.SourceTypeFile.String()
	}
	return src.Type.String()
}

func resolveMapping(rows [][]domain.Cell, mapping *domain.ColumnMapping, autoDetect bool) domain.ColumnMapping {
	if mapping != nil && !autoDetect {
		return mapping.Clone()
	}
	if len(rows) == 0 {
		return domain.ColumnMapping{}
	}
	return normalization.DetectColumns(rows[0])
}

// DetectColumns guesses a mapping from a header row.
func (s *Service) DetectColumns(header []domain.Cell) domain.ColumnMapping {
	return normalization.DetectColumns(header)
}

// Ingest normalizes rows and creates a strategy from them. Nothing is created when
// the mapping is incomplete, no row is valid or the store is full.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (Mutation, error) {
	label := sourceLabel(req.Source)
	if s.store.Len() >= domain.MaxStrategies {
		observability.RecordIngest(label, "rejected", 0, 0)
		return Mutation{}, strategy.ErrCapacity
	}

	mapping := resolveMapping(req.Rows, req.Mapping, req.AutoDetect)
	res, err := normalization.Normalize(req.Rows, mapping)
	if err != nil {
		observability.RecordIngest(label, "failed", 0, 0)
		return Mutation{}, err
	}

	st, err := s.store.Create(strategy.CreateParams{
		Name:     req.Name,
		FileName: req.FileName,
		Capital:  req.Capital,
		Mapping:  mapping,
		Trades:   res.Trades,
		Source:   req.Source,
	})
	if err != nil {
		observability.RecordIngest(label, "rejected", 0, 0)
		return Mutation{}, err
	}
	observability.RecordIngest(label, "ok", len(res.Trades), res.Skipped)

	s.logger.Info("strategy ingested",
		zap.String("strategy_id", st.ID),
		zap.String("name", st.Name),
		zap.String("source", label),
		zap.Int("trades", len(res.Trades)),
		zap.Int("skipped", res.Skipped),
	)

	m := s.finish(ctx, EventStrategyCreated, st)
	m.Skipped = res.Skipped
	m.Total = res.Total
	return m, nil
}

// IngestSheets fetches a spreadsheet range and creates a strategy from it.
func (s *Service) IngestSheets(ctx context.Context, req SheetsRequest) (Mutation, error) {
	if s.sheets == nil {
		return Mutation{}, ErrSheetsUnavailable
	}
	cfg := sheets.Config(req.SpreadsheetID, req.SheetName, req.Range)
	rows, err := s.sheets.FetchValues(ctx, req.Token, cfg.SpreadsheetID, cfg.FullRange)
	if err != nil {
		return Mutation{}, fmt.Errorf("%w: %w", ErrSheetsFetch, err)
	}

	synced := s.now().UTC()
	cfg.LastSync = &synced
	src := domain.Source{Type: domain.SourceTypeSheets, Config: cfg}

	name := req.Name
	if name == "" {
		name = req.SheetName
	}
	return s.Ingest(ctx, IngestRequest{
		Name:     name,
		FileName: cfg.FullRange,
		Capital:  req.Capital,
		Rows:     rows,
		Mapping:  req.Mapping,
		Source:   &src,
	})
}

// Refresh re-normalizes rows with the strategy's stored mapping and replaces its trades.
// The year and month selection is reset.
func (s *Service) Refresh(ctx context.Context, id string, rows [][]domain.Cell) (Mutation, error) {
	current, err := s.store.Get(id)
	if err != nil {
		return Mutation{}, err
	}
	return s.refresh(ctx, current, rows, current.FileName, nil)
}

func (s *Service) refresh(ctx context.Context, current domain.Strategy, rows [][]domain.Cell, fileName string, syncedAt *time.Time) (Mutation, error) {
	label := current.Source.Type.String()
	res, err := normalization.Normalize(rows, current.ColumnMapping)
	if err != nil {
		observability.RecordIngest(label, "failed", 0, 0)
		return Mutation{}, err
	}

	st, err := s.store.ReplaceTrades(current.ID, res.Trades, current.ColumnMapping, fileName, syncedAt)
	if err != nil {
		return Mutation{}, err
	}
	observability.RecordIngest(label, "ok", len(res.Trades), res.Skipped)

	s.logger.Info("strategy refreshed",
		zap.String("strategy_id", st.ID),
		zap.Int("trades", len(res.Trades)),
		zap.Int("skipped", res.Skipped),
	)

	m := s.finish(ctx, EventTradesRefreshed, st)
	m.Skipped = res.Skipped
	m.Total = res.Total
	return m, nil
}

// RefreshFromSheets fetches a sheets-backed strategy's range again and replaces its trades.
func (s *Service) RefreshFromSheets(ctx context.Context, id, token string) (Mutation, error) {
	current, err := s.store.Get(id)
	if err != nil {
		return Mutation{}, err
	}
	if current.Source.Type != domain.SourceTypeSheets {
		return Mutation{}, ErrNotSheetsSource
	}
	if s.sheets == nil {
		return Mutation{}, ErrSheetsUnavailable
	}

	cfg := current.Source.Config
	rng := cfg.FullRange
	if rng == "" {
		rng = sheets.FullRange(cfg.SheetName, cfg.Range)
	}
	rows, err := s.sheets.FetchValues(ctx, token, cfg.SpreadsheetID, rng)
	if err != nil {
		return Mutation{}, fmt.Errorf("%w: %w", ErrSheetsFetch, err)
	}
	synced := s.now().UTC()
	return s.refresh(ctx, current, rows, current.FileName, &synced)
}

// SheetsStrategies returns the ids of strategies backed by a spreadsheet.
func (s *Service) SheetsStrategies() []string {
	var ids []string
	for _, st := range s.store.List() {
		if st.Source.Type == domain.SourceTypeSheets {
			ids = append(ids, st.ID)
		}
	}
	return ids
}
