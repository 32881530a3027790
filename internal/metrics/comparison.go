package metrics

import (
	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/weekly"
)

// WeekRange selects weeks Start..End of a weekly grouping (1-indexed, inclusive).
type WeekRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Comparison is the per-strategy row of a side-by-side comparison. Always NET.
type Comparison struct {
	NetPL         float64 `json:"netPL"`
	Trades        int     `json:"trades"`
	Profitability float64 `json:"profitability"`
	ProfitFactor  Factor  `json:"profitFactor"`
	AvgReturn     float64 `json:"avgReturn"`
	MaxDrawdown   float64 `json:"maxDD"`
	TotalCharges  float64 `json:"totalCharges"`
}

// ComputeComparison calculates comparison metrics over all trades of a strategy,
// restricted to the weeks in weekRange when it is set.
func ComputeComparison(all []domain.TradeRecord, weekRange *WeekRange) Comparison {
	trades := all
	if weekRange != nil {
		trades = weekly.Aggregate(all, domain.PLTypeNet).TradesInRange(weekRange.Start, weekRange.End)
	}
	if len(trades) == 0 {
		return Comparison{}
	}

	values := plValues(trades, domain.PLTypeNet)
	grossProfit, grossLoss, wins, _ := computeSplit(values)
	total := computeSum(values)

	charges := 0.0
	for _, t := range trades {
		charges += t.Charges
	}

	return Comparison{
		NetPL:         total,
		Trades:        len(trades),
		Profitability: computePercent(wins, len(trades)),
		ProfitFactor:  Factor(computeProfitFactor(grossProfit, grossLoss)),
		AvgReturn:     computeAverage(total, len(trades)),
		MaxDrawdown:   computeMaxDrawdown(values),
		TotalCharges:  charges,
	}
}
