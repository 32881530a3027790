// Package metrics computes performance statistics over trade sequences.
package metrics

import (
	"pnl-dashboard/internal/domain"
)

// Statistics is the headline report for a trade view.
type Statistics struct {
	TotalPL            float64 `json:"totalPL"`
	TotalTrades        int     `json:"totalTrades"`
	WinningTrades      int     `json:"winningTrades"`
	LosingTrades       int     `json:"losingTrades"`
	Profitability      float64 `json:"profitability"` // percent of winning trades
	GrossProfit        float64 `json:"grossProfit"`
	GrossLoss          float64 `json:"grossLoss"`    // absolute value
	ProfitFactor       Factor  `json:"profitFactor"` // +Inf when there are profits and no losses
	AvgReturn          float64 `json:"avgReturn"`
	TotalCharges       float64 `json:"totalCharges"`
	MaxDrawdown        float64 `json:"maxDrawdown"`
	MaxDrawdownPercent float64 `json:"maxDrawdownPercent"` // relative to capital at the peak
	MaxWinStreak       Streak  `json:"maxWinStreak"`
	MaxLossStreak      Streak  `json:"maxLossStreak"`
}

// ComputeStatistics calculates the statistics of date-ordered trades under plType.
// The cumulative series is recomputed from the trades, so raw records and derived
// views give the same result. An empty sequence yields a zero report.
func ComputeStatistics(trades []domain.TradeRecord, plType domain.PLType, capital float64) Statistics {
	values := plValues(trades, plType)
	n := len(values)

	grossProfit, grossLoss, wins, losses := computeSplit(values)
	totalPL := computeSum(values)
	maxDD, maxDDPct := computePeakCapitalDrawdown(values, capital)
	maxWin, maxLoss := computeStreaks(values)

	charges := 0.0
	for _, t := range trades {
		charges += t.Charges
	}

	return Statistics{
		TotalPL:            totalPL,
		TotalTrades:        n,
		WinningTrades:      wins,
		LosingTrades:       losses,
		Profitability:      computePercent(wins, n),
		GrossProfit:        grossProfit,
		GrossLoss:          grossLoss,
		ProfitFactor:       Factor(computeProfitFactor(grossProfit, grossLoss)),
		AvgReturn:          computeAverage(totalPL, n),
		TotalCharges:       charges,
		MaxDrawdown:        maxDD,
		MaxDrawdownPercent: maxDDPct,
		MaxWinStreak:       maxWin,
		MaxLossStreak:      maxLoss,
	}
}
