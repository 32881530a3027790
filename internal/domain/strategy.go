package domain

import "time"

// Strategy limits and defaults.
const (
	MaxStrategies           = 10     // hard cap on coexisting strategies
	DefaultCapital          = 350000 // baseline for percent calculations
	MaxNameLength           = 20     // runes
	YearAll                 = "ALL"  // SelectedYear value for no year filter
	LowConfidenceTradeCount = 50     // forecasts below this sample size are flagged
)

// Strategy is a named, independently filterable dataset of trades.
type Strategy struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	FileName      string        `json:"fileName"`
	LastUpdated   time.Time     `json:"lastUpdated"`
	Capital       float64       `json:"capital"`
	ColumnMapping ColumnMapping `json:"columnMapping"`

	// AllTrades is the unfiltered source of truth, sorted by date.
	AllTrades []TradeRecord `json:"allTradesData"`
	// Trades is the derived view for the current selection. Never persisted.
	Trades []TradeRecord `json:"-"`

	SelectedYear       string       `json:"selectedYear"`  // "ALL" or a 4-digit year
	SelectedMonth      *MonthFilter `json:"selectedMonth"` // nil when no month filter
	Source             Source       `json:"source"`
	SelectedInstrument string       `json:"selectedInstrument,omitempty"` // opaque instrument id
}

// MonthFilter restricts a view to one month. Year is nil for "any year".
type MonthFilter struct {
	Year  *int `json:"year"`
	Month int  `json:"month"` // 0-11
}

// Clone returns a deep copy of the strategy.
func (s Strategy) Clone() Strategy {
	out := s
	out.ColumnMapping = s.ColumnMapping.Clone()
	out.AllTrades = CloneTrades(s.AllTrades)
	out.Trades = CloneTrades(s.Trades)
	if s.SelectedMonth != nil {
		m := *s.SelectedMonth
		if s.SelectedMonth.Year != nil {
			y := *s.SelectedMonth.Year
			m.Year = &y
		}
		out.SelectedMonth = &m
	}
	out.Source = s.Source.Clone()
	return out
}
