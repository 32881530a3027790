// Package reporting builds offline performance reports from trade logs and renders
// them as Markdown, CSV or YAML.
package reporting

import (
	"errors"
	"fmt"
	"time"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/filter"
	"pnl-dashboard/internal/forecast"
	"pnl-dashboard/internal/format"
	"pnl-dashboard/internal/metrics"
	"pnl-dashboard/internal/observability"
	"pnl-dashboard/internal/period"
	"pnl-dashboard/internal/weekly"
)

// DefaultWindowWeeks is the best/worst window used when none is configured.
const DefaultWindowWeeks = 4

// Input is one trade log to report on.
type Input struct {
	Name    string
	Trades  []domain.TradeRecord // sorted by date
	Capital float64
	Rows    int // data rows read, 0 when unknown
	Skipped int // data rows dropped during normalization
}

// Generator produces reports from normalized trade logs.
type Generator struct {
	plType      domain.PLType
	windowWeeks int
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a generator for plType. A windowWeeks below 1 uses the default.
func NewGenerator(plType domain.PLType, windowWeeks int) *Generator {
	if !plType.IsValid() {
		plType = domain.PLTypeNet
	}
	if windowWeeks < 1 {
		windowWeeks = DefaultWindowWeeks
	}
	return &Generator{
		plType:      plType,
		windowWeeks: windowWeeks,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report covering every input, in input order.
func (g *Generator) Generate(inputs []Input) (*Report, error) {
	if len(inputs) == 0 {
		return nil, errors.New("reporting: no inputs")
	}

	r := &Report{
		GeneratedAt:     g.now(),
		PLType:          g.plType,
		WindowWeeks:     g.windowWeeks,
		StrategyCount:   len(inputs),
		StrategyMetrics: make([]StrategyMetricRow, 0, len(inputs)),
		Strategies:      make([]StrategySection, 0, len(inputs)),
	}
	for i, in := range inputs {
		name := in.Name
		if name == "" {
			name = fmt.Sprintf("Strategy %d", i+1)
		}
		capital := in.Capital
		if capital <= 0 {
			capital = domain.DefaultCapital
		}
		r.StrategyMetrics = append(r.StrategyMetrics, g.metricRow(name, in.Trades, capital))
		r.Strategies = append(r.Strategies, g.section(name, in, capital))
	}

	observability.RecordReportGenerated()
	return r, nil
}

// Build reports on a single trade log.
func Build(name string, trades []domain.TradeRecord, plType domain.PLType, capital float64) Report {
	r, _ := NewGenerator(plType, DefaultWindowWeeks).Generate([]Input{{Name: name, Trades: trades, Capital: capital}})
	return *r
}

func (g *Generator) metricRow(name string, trades []domain.TradeRecord, capital float64) StrategyMetricRow {
	s := metrics.ComputeStatistics(trades, g.plType, capital)
	return StrategyMetricRow{
		Name:               name,
		TotalTrades:        s.TotalTrades,
		TotalPL:            s.TotalPL,
		Profitability:      s.Profitability,
		ProfitFactor:       float64(s.ProfitFactor),
		ProfitFactorText:   format.ProfitFactor(float64(s.ProfitFactor)),
		AvgReturn:          s.AvgReturn,
		TotalCharges:       s.TotalCharges,
		MaxDrawdown:        s.MaxDrawdown,
		MaxDrawdownPercent: s.MaxDrawdownPercent,
		MaxWinStreak:       s.MaxWinStreak.Count,
		MaxLossStreak:      s.MaxLossStreak.Count,
	}
}

func (g *Generator) section(name string, in Input, capital float64) StrategySection {
	weeks := weekly.Aggregate(in.Trades, g.plType)

	sec := StrategySection{
		Name:        name,
		DataSummary: g.dataSummary(in, capital, weeks.Len()),
		Monthly:     monthlyRows(metrics.MonthlyReturns(in.Trades, g.plType)),
	}
	if w, ok := period.FindBestWorst(weeks.CumulativeByWeek, g.windowWeeks); ok {
		sec.BestWorst = &w
	}
	if f, err := forecast.Forecast(in.Trades); err == nil {
		sec.Forecast = projectionRows(f.Projections)
	}
	sec.DataQuality = g.dataQuality(in, weeks.Len())
	return sec
}

// dataSummary computes the input description.
func (g *Generator) dataSummary(in Input, capital float64, weeks int) DataSummary {
	ds := DataSummary{
		Rows:        in.Rows,
		SkippedRows: in.Skipped,
		TotalTrades: len(in.Trades),
		Capital:     capital,
		Weeks:       weeks,
	}
	if info, ok := filter.TimePeriod(in.Trades); ok {
		ds.DateRangeStart = info.FirstDate
		ds.DateRangeEnd = info.LastDate
		ds.Months = info.Months
		ds.AvgTradesPerMonth = info.AvgTradesPerMonth
	}
	return ds
}

// dataQuality checks whether the derived figures rest on enough data.
func (g *Generator) dataQuality(in Input, weeks int) DataQualitySection {
	checks := []SufficiencyCheckRow{
		{
			Name:      "Forecast sample size",
			Threshold: fmt.Sprintf(">= %d trades", domain.LowConfidenceTradeCount),
			Actual:    fmt.Sprintf("%d trades", len(in.Trades)),
			Pass:      len(in.Trades) >= domain.LowConfidenceTradeCount,
		},
		{
			Name:      "Best/worst window",
			Threshold: fmt.Sprintf(">= %d weeks", g.windowWeeks),
			Actual:    fmt.Sprintf("%d weeks", weeks),
			Pass:      weeks >= g.windowWeeks,
		},
	}
	if in.Rows > 0 {
		skippedPct := float64(in.Skipped) / float64(in.Rows) * 100
		checks = append(checks, SufficiencyCheckRow{
			Name:      "Skipped rows",
			Threshold: "<= 5.00%",
			Actual:    format.Percent(skippedPct),
			Pass:      skippedPct <= 5,
		})
	}

	all := true
	for _, c := range checks {
		all = all && c.Pass
	}
	return DataQualitySection{SufficiencyChecks: checks, AllChecksPassed: all}
}

func monthlyRows(years []metrics.YearReturns) []MonthlyRow {
	rows := make([]MonthlyRow, len(years))
	for i, y := range years {
		rows[i] = MonthlyRow{Year: y.Year, Total: y.Total}
		for m := 0; m < 12; m++ {
			if y.Present[m] {
				v := y.Months[m]
				rows[i].Months[m] = &v
			}
		}
	}
	return rows
}
