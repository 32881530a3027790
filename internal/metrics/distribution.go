package metrics

import (
	"math"

	"pnl-dashboard/internal/domain"
)

// Bin is one bucket of the |net P&L| distribution.
type Bin struct {
	Label      string  `json:"label"`
	Min        float64 `json:"min"`
	Max        Factor  `json:"max"` // +Inf for the open-ended bucket
	Count      int     `json:"count"`
	Percentage int     `json:"percentage"` // rounded share of all trades
}

var binRanges = []struct {
	min, max float64
	label    string
}{
	{0, 5000, "₹0 - ₹5K"},
	{5000, 10000, "₹5K - ₹10K"},
	{10000, 20000, "₹10K - ₹20K"},
	{20000, 40000, "₹20K - ₹40K"},
	{40000, 80000, "₹40K - ₹80K"},
	{80000, math.Inf(1), "₹80K+"},
}

// ProfitBins buckets trades by absolute net P&L. Only non-empty buckets are returned.
func ProfitBins(trades []domain.TradeRecord) []Bin {
	if len(trades) == 0 {
		return nil
	}

	var bins []Bin
	for _, r := range binRanges {
		count := 0
		for _, t := range trades {
			v := math.Abs(t.NetPL)
			if v >= r.min && v < r.max {
				count++
			}
		}
		if count == 0 {
			continue
		}
		bins = append(bins, Bin{
			Label:      r.label,
			Min:        r.min,
			Max:        Factor(r.max),
			Count:      count,
			Percentage: int(math.Floor(float64(count)/float64(len(trades))*100 + 0.5)),
		})
	}
	return bins
}

// SplitByOutcome separates trades with positive and negative net P&L.
// Break-even trades go to neither side.
func SplitByOutcome(trades []domain.TradeRecord) (profits, losses []domain.TradeRecord) {
	for _, t := range trades {
		switch {
		case t.NetPL > 0:
			profits = append(profits, t)
		case t.NetPL < 0:
			losses = append(losses, t)
		}
	}
	return profits, losses
}

// WaterfallSummary is the profit / loss / net breakdown of net P&L.
type WaterfallSummary struct {
	GrossProfit float64 `json:"grossProfit"`
	GrossLoss   float64 `json:"grossLoss"` // absolute value
	Net         float64 `json:"net"`
}

// Waterfall computes the net P&L breakdown of trades.
func Waterfall(trades []domain.TradeRecord) WaterfallSummary {
	grossProfit, grossLoss, _, _ := computeSplit(plValues(trades, domain.PLTypeNet))
	return WaterfallSummary{
		GrossProfit: grossProfit,
		GrossLoss:   grossLoss,
		Net:         grossProfit - grossLoss,
	}
}
