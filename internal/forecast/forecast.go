// Package forecast projects future P&L from the distribution of past net trade results.
package forecast

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/filter"
)

// ErrNoTrades is returned when there is no history to project from.
var ErrNoTrades = errors.New("forecast: no trades")

// extremeBand scales the standard deviation for the extreme projection bands.
const extremeBand = 1.5

// Horizon is a fixed projection window.
type Horizon struct {
	Name      string
	ShortName string
	Months    int
}

// Horizons lists the projection windows in ascending order.
var Horizons = []Horizon{
	{Name: "1 Month", ShortName: "1M", Months: 1},
	{Name: "2 Months", ShortName: "2M", Months: 2},
	{Name: "3 Months", ShortName: "3M", Months: 3},
	{Name: "6 Months", ShortName: "6M", Months: 6},
	{Name: "9 Months", ShortName: "9M", Months: 9},
	{Name: "1 Year", ShortName: "1Y", Months: 12},
	{Name: "2 Years", ShortName: "2Y", Months: 24},
	{Name: "4 Years", ShortName: "4Y", Months: 48},
}

// Projection is the forecast for one horizon.
type Projection struct {
	Name           string  `json:"name"`
	ShortName      string  `json:"shortName"`
	Months         int     `json:"months"`
	ExpectedTrades int     `json:"expectedTrades"`
	BestCase       float64 `json:"bestCase"`
	BaseCase       float64 `json:"baseCase"`
	WorstCase      float64 `json:"worstCase"`
	ExtremeHigh    float64 `json:"extremeHigh"`
	ExtremeLow     float64 `json:"extremeLow"`
}

// Result holds all projections plus the statistics they were derived from.
type Result struct {
	Projections       []Projection `json:"projections"`
	CurrentPL         float64      `json:"currentPL"`
	TradeCount        int          `json:"tradeCount"`
	AvgTradesPerMonth float64      `json:"avgTradesPerMonth"`
	Mean              float64      `json:"mean"`
	StdDev            float64      `json:"stdDev"`
	P25               float64      `json:"p25"`
	P50               float64      `json:"p50"`
	P75               float64      `json:"p75"`
	LowConfidence     bool         `json:"lowConfidence"`
}

// Forecast projects net P&L over every horizon from the full, date-ordered trade history.
func Forecast(all []domain.TradeRecord) (Result, error) {
	if len(all) == 0 {
		return Result{}, ErrNoTrades
	}

	values := make([]float64, len(all))
	current := 0.0
	for i, t := range all {
		values[i] = t.NetPL
		current += t.NetPL
	}
	sort.Float64s(values)

	mean, std := stat.PopMeanStdDev(values, nil)
	months := filter.MonthsSpan(all[0].Date, all[len(all)-1].Date)
	avg := float64(len(all)) / float64(months)

	res := Result{
		CurrentPL:         current,
		TradeCount:        len(all),
		AvgTradesPerMonth: avg,
		Mean:              mean,
		StdDev:            std,
		P25:               Percentile(values, 25),
		P50:               Percentile(values, 50),
		P75:               Percentile(values, 75),
		LowConfidence:     len(all) < domain.LowConfidenceTradeCount,
		Projections:       make([]Projection, 0, len(Horizons)),
	}

	for _, h := range Horizons {
		expected := int(math.Floor(avg*float64(h.Months) + 0.5))
		n := float64(expected)
		p := Projection{
			Name:           h.Name,
			ShortName:      h.ShortName,
			Months:         h.Months,
			ExpectedTrades: expected,
			BestCase:       current + res.P75*n,
			BaseCase:       current + res.P50*n,
			WorstCase:      current + res.P25*n,
		}
		spread := std * math.Sqrt(n) * extremeBand
		p.ExtremeHigh = p.BestCase + spread
		p.ExtremeLow = p.WorstCase - spread
		res.Projections = append(res.Projections, p)
	}
	return res, nil
}

// Percentile interpolates linearly between order statistics of an ascending slice.
// p is in 0..100. Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower < 0 {
		lower = 0
	}
	if upper > len(sorted)-1 {
		upper = len(sorted) - 1
	}
	weight := index - math.Floor(index)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
