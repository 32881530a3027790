package dashboard

import (
	"errors"
	"time"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/filter"
	"pnl-dashboard/internal/forecast"
	"pnl-dashboard/internal/format"
	"pnl-dashboard/internal/metrics"
	"pnl-dashboard/internal/normalization"
	"pnl-dashboard/internal/observability"
	"pnl-dashboard/internal/period"
	"pnl-dashboard/internal/strategy"
	"pnl-dashboard/internal/weekly"
)

// ErrNoCurrentStrategy is returned by read calls with an empty id and no current strategy.
var ErrNoCurrentStrategy = strategy.ErrNoCurrent

// SeriesPoint is one point of the cumulative P&L chart.
type SeriesPoint struct {
	Date                time.Time `json:"date"`
	PL                  float64   `json:"pl"`
	CumulativePL        float64   `json:"cumulativePL"`
	CumulativePLPercent float64   `json:"cumulativePLPercent"`
}

// Headline is the formatted summary shown above the charts.
type Headline struct {
	TotalPL       string `json:"totalPL"`
	Profitability string `json:"profitability"`
	ProfitFactor  string `json:"profitFactor"`
	AvgReturn     string `json:"avgReturn"`
	MaxDrawdown   string `json:"maxDrawdown"`
	TotalCharges  string `json:"totalCharges"`
}

// Dashboard is the full derived view of one strategy under its current selection.
type Dashboard struct {
	StrategyID    string                   `json:"strategyId"`
	Name          string                   `json:"name"`
	Capital       float64                  `json:"capital"`
	PLType        domain.PLType            `json:"plType"`
	SelectedYear  string                   `json:"selectedYear"`
	SelectedMonth *domain.MonthFilter      `json:"selectedMonth"`
	Years         []int                    `json:"years"`
	Series        []SeriesPoint            `json:"series"`
	Statistics    metrics.Statistics       `json:"statistics"`
	TimePeriod    *filter.TimePeriodInfo   `json:"timePeriod"`
	Bins          []metrics.Bin            `json:"bins"`
	ProfitBins    []metrics.Bin            `json:"profitBins"`
	LossBins      []metrics.Bin            `json:"lossBins"`
	Waterfall     metrics.WaterfallSummary `json:"waterfall"`
	Headline      Headline                 `json:"headline"`
}

// ComparisonRow is one strategy of a comparison table.
type ComparisonRow struct {
	StrategyID string             `json:"strategyId"`
	Name       string             `json:"name"`
	Metrics    metrics.Comparison `json:"metrics"`
}

// BestWorst is the best and worst rolling window of the weekly series.
type BestWorst struct {
	WindowSize int            `json:"windowSize"`
	Weeks      int            `json:"weeks"`
	Found      bool           `json:"found"`
	Window     *period.Window `json:"window,omitempty"`
}

// Heatmap is the monthly return grid of a strategy's full history.
type Heatmap struct {
	StrategyID string                `json:"strategyId"`
	PLType     domain.PLType         `json:"plType"`
	Years      []metrics.YearReturns `json:"years"`
}

// ForecastView is a forecast restricted to a horizon view.
type ForecastView struct {
	forecast.Result
	View forecast.View `json:"view"`
}

// Overlay is a strategy's cumulative series with its linked instrument aligned to it.
type Overlay struct {
	StrategyID string                   `json:"strategyId"`
	Instrument *domain.Instrument       `json:"instrument,omitempty"`
	Series     []SeriesPoint            `json:"series"`
	Points     []domain.InstrumentPoint `json:"points"`
}

// resolve returns the strategy and the P&L type its view was built with.
func (s *Service) resolve(id string) (domain.Strategy, domain.PLType, error) {
	return s.store.Snapshot(id)
}

func timed(view string) func() {
	start := time.Now()
	return func() { observability.RecordCompute(view, time.Since(start).Seconds()) }
}

func series(trades []domain.TradeRecord, plType domain.PLType) []SeriesPoint {
	out := make([]SeriesPoint, len(trades))
	for i, t := range trades {
		out[i] = SeriesPoint{
			Date:                t.Date,
			PL:                  t.PL(plType),
			CumulativePL:        t.CumulativePL,
			CumulativePLPercent: t.CumulativePLPercent,
		}
	}
	return out
}

// Dashboard computes the chart series, statistics and breakdowns of a strategy's
// filtered view. An empty id selects the current strategy.
func (s *Service) Dashboard(id string) (Dashboard, error) {
	defer timed("dashboard")()

	st, plType, err := s.resolve(id)
	if err != nil {
		return Dashboard{}, err
	}
	view := st.Trades

	stats := metrics.ComputeStatistics(view, plType, st.Capital)
	profits, losses := metrics.SplitByOutcome(view)
	d := Dashboard{
		StrategyID:    st.ID,
		Name:          st.Name,
		Capital:       st.Capital,
		PLType:        plType,
		SelectedYear:  st.SelectedYear,
		SelectedMonth: st.SelectedMonth,
		Years:         filter.Years(st.AllTrades),
		Series:        series(view, plType),
		Statistics:    stats,
		Bins:          metrics.ProfitBins(view),
		ProfitBins:    metrics.ProfitBins(profits),
		LossBins:      metrics.ProfitBins(losses),
		Waterfall:     metrics.Waterfall(view),
		Headline: Headline{
			TotalPL:       format.Currency(stats.TotalPL),
			Profitability: format.Percent(stats.Profitability),
			ProfitFactor:  format.ProfitFactor(float64(stats.ProfitFactor)),
			AvgReturn:     format.Currency(stats.AvgReturn),
			MaxDrawdown:   format.Currency(stats.MaxDrawdown),
			TotalCharges:  format.Currency(stats.TotalCharges),
		},
	}
	if info, ok := filter.TimePeriod(view); ok {
		d.TimePeriod = &info
	}
	return d, nil
}

// Weekly groups a strategy's full history into calendar weeks.
func (s *Service) Weekly(id string) (weekly.Result, error) {
	defer timed("weekly")()

	st, plType, err := s.resolve(id)
	if err != nil {
		return weekly.Result{}, err
	}
	return weekly.Aggregate(st.AllTrades, plType), nil
}

// BestWorst finds the best and worst windowSize-week stretch of a strategy's history.
func (s *Service) BestWorst(id string, windowSize int) (BestWorst, error) {
	defer timed("best_worst")()

	st, plType, err := s.resolve(id)
	if err != nil {
		return BestWorst{}, err
	}
	cum := weekly.Aggregate(st.AllTrades, plType).CumulativeByWeek
	out := BestWorst{WindowSize: windowSize, Weeks: len(cum)}
	if w, ok := period.FindBestWorst(cum, windowSize); ok {
		out.Found = true
		out.Window = &w
	}
	return out, nil
}

// PeriodAnalysis analyzes weeks startWeek..endWeek of a strategy's history.
func (s *Service) PeriodAnalysis(id string, startWeek, endWeek int) (period.Analysis, error) {
	defer timed("period")()

	st, plType, err := s.resolve(id)
	if err != nil {
		return period.Analysis{}, err
	}
	return period.Analyze(st.AllTrades, plType, startWeek, endWeek), nil
}

// Compare computes NET comparison metrics for each id, in the order given.
// An empty ids list compares every strategy.
func (s *Service) Compare(ids []string, weekRange *metrics.WeekRange) ([]ComparisonRow, error) {
	defer timed("compare")()

	var list []domain.Strategy
	if len(ids) == 0 {
		list = s.store.List()
	} else {
		list = make([]domain.Strategy, 0, len(ids))
		for _, id := range ids {
			st, err := s.store.Get(id)
			if err != nil {
				return nil, err
			}
			list = append(list, st)
		}
	}

	rows := make([]ComparisonRow, len(list))
	for i, st := range list {
		rows[i] = ComparisonRow{
			StrategyID: st.ID,
			Name:       st.Name,
			Metrics:    metrics.ComputeComparison(st.AllTrades, weekRange),
		}
	}
	return rows, nil
}

// Heatmap returns monthly returns over a strategy's full history.
func (s *Service) Heatmap(id string) (Heatmap, error) {
	defer timed("heatmap")()

	st, plType, err := s.resolve(id)
	if err != nil {
		return Heatmap{}, err
	}
	return Heatmap{
		StrategyID: st.ID,
		PLType:     plType,
		Years:      metrics.MonthlyReturns(st.AllTrades, plType),
	}, nil
}

// Forecast projects a strategy's NET history over the horizons of view.
func (s *Service) Forecast(id string, view forecast.View) (ForecastView, error) {
	defer timed("forecast")()

	st, _, err := s.resolve(id)
	if err != nil {
		return ForecastView{}, err
	}
	res, err := forecast.Forecast(st.AllTrades)
	if err != nil {
		return ForecastView{}, err
	}
	res.Projections = res.Filter(view)
	return ForecastView{Result: res, View: view}, nil
}

// Overlay aligns the strategy's linked instrument to its filtered trade dates.
// Points is empty when no instrument is linked or none of its dates overlap.
func (s *Service) Overlay(id string) (Overlay, error) {
	defer timed("overlay")()

	st, plType, err := s.resolve(id)
	if err != nil {
		return Overlay{}, err
	}
	out := Overlay{StrategyID: st.ID, Series: series(st.Trades, plType)}
	if st.SelectedInstrument == "" {
		return out, nil
	}
	inst, err := s.store.Instrument(st.SelectedInstrument)
	if err != nil {
		if errors.Is(err, strategy.ErrInstrumentNotFound) {
			return out, nil
		}
		return Overlay{}, err
	}
	dates := make([]time.Time, len(st.Trades))
	for i, t := range st.Trades {
		dates[i] = t.Date
	}
	out.Instrument = &inst
	out.Points = normalization.AlignInstrument(inst.Data, dates)
	return out, nil
}
