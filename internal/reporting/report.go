package reporting

import (
	"time"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/forecast"
	"pnl-dashboard/internal/period"
)

// Report is the offline performance report of one or more trade logs.
type Report struct {
	// Metadata
	GeneratedAt   time.Time     `json:"generatedAt" yaml:"generated_at"`
	PLType        domain.PLType `json:"plType" yaml:"pl_type"`
	WindowWeeks   int           `json:"windowWeeks" yaml:"window_weeks"`
	StrategyCount int           `json:"strategyCount" yaml:"strategy_count"`

	// Strategy metrics, one row per input in input order
	StrategyMetrics []StrategyMetricRow `json:"strategyMetrics" yaml:"strategy_metrics"`

	// Per-strategy detail sections, same order as StrategyMetrics
	Strategies []StrategySection `json:"strategies" yaml:"strategies"`
}

// StrategySection holds the detail of one trade log.
type StrategySection struct {
	Name        string             `json:"name" yaml:"name"`
	DataSummary DataSummary        `json:"dataSummary" yaml:"data_summary"`
	DataQuality DataQualitySection `json:"dataQuality" yaml:"data_quality"`
	BestWorst   *period.Window     `json:"bestWorst,omitempty" yaml:"best_worst,omitempty"`
	Forecast    []ProjectionRow    `json:"forecast" yaml:"forecast"`
	Monthly     []MonthlyRow       `json:"monthly" yaml:"monthly"`
}

// DataSummary describes the input trades.
type DataSummary struct {
	Rows              int       `json:"rows" yaml:"rows"`
	SkippedRows       int       `json:"skippedRows" yaml:"skipped_rows"`
	TotalTrades       int       `json:"totalTrades" yaml:"total_trades"`
	Capital           float64   `json:"capital" yaml:"capital"`
	DateRangeStart    time.Time `json:"dateRangeStart" yaml:"date_range_start"`
	DateRangeEnd      time.Time `json:"dateRangeEnd" yaml:"date_range_end"`
	Months            int       `json:"months" yaml:"months"`
	AvgTradesPerMonth float64   `json:"avgTradesPerMonth" yaml:"avg_trades_per_month"`
	Weeks             int       `json:"weeks" yaml:"weeks"`
}

// DataQualitySection contains sufficiency checks for the derived figures.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow `json:"sufficiencyChecks" yaml:"sufficiency_checks"`
	AllChecksPassed   bool                  `json:"allChecksPassed" yaml:"all_checks_passed"`
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string `json:"name" yaml:"name"`
	Threshold string `json:"threshold" yaml:"threshold"`
	Actual    string `json:"actual" yaml:"actual"`
	Pass      bool   `json:"pass" yaml:"pass"`
}

// StrategyMetricRow represents one row in the strategy metrics table.
type StrategyMetricRow struct {
	Name               string  `json:"name" yaml:"name"`
	TotalTrades        int     `json:"totalTrades" yaml:"total_trades"`
	TotalPL            float64 `json:"totalPL" yaml:"total_pl"`
	Profitability      float64 `json:"profitability" yaml:"profitability"`
	ProfitFactor       float64 `json:"-" yaml:"-"`
	ProfitFactorText   string  `json:"profitFactor" yaml:"profit_factor"`
	AvgReturn          float64 `json:"avgReturn" yaml:"avg_return"`
	TotalCharges       float64 `json:"totalCharges" yaml:"total_charges"`
	MaxDrawdown        float64 `json:"maxDrawdown" yaml:"max_drawdown"`
	MaxDrawdownPercent float64 `json:"maxDrawdownPercent" yaml:"max_drawdown_percent"`
	MaxWinStreak       int     `json:"maxWinStreak" yaml:"max_win_streak"`
	MaxLossStreak      int     `json:"maxLossStreak" yaml:"max_loss_streak"`
}

// ProjectionRow is one forecast horizon.
type ProjectionRow struct {
	Horizon        string  `json:"horizon" yaml:"horizon"`
	ExpectedTrades int     `json:"expectedTrades" yaml:"expected_trades"`
	WorstCase      float64 `json:"worstCase" yaml:"worst_case"`
	BaseCase       float64 `json:"baseCase" yaml:"base_case"`
	BestCase       float64 `json:"bestCase" yaml:"best_case"`
}

// MonthlyRow is one calendar year of monthly P&L. Months without trades are nil.
type MonthlyRow struct {
	Year   int          `json:"year" yaml:"year"`
	Months [12]*float64 `json:"months" yaml:"months"`
	Total  float64      `json:"total" yaml:"total"`
}

// projectionRows converts forecast projections to report rows.
func projectionRows(projections []forecast.Projection) []ProjectionRow {
	rows := make([]ProjectionRow, len(projections))
	for i, p := range projections {
		rows[i] = ProjectionRow{
			Horizon:        p.ShortName,
			ExpectedTrades: p.ExpectedTrades,
			WorstCase:      p.WorstCase,
			BaseCase:       p.BaseCase,
			BestCase:       p.BestCase,
		}
	}
	return rows
}
