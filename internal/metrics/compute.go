package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"pnl-dashboard/internal/domain"
)

// plValues extracts the selected P&L value of each trade, in order.
func plValues(trades []domain.TradeRecord, plType domain.PLType) []float64 {
	values := make([]float64, len(trades))
	for i, t := range trades {
		values[i] = t.PL(plType)
	}
	return values
}

// computeSum calculates the sum of values (0 for none).
func computeSum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values)
}

// computeSplit separates values by sign.
// Returns the sum of positive values, the absolute sum of negative values and both counts.
// Zero values count toward neither side.
func computeSplit(values []float64) (grossProfit, grossLoss float64, wins, losses int) {
	for _, v := range values {
		switch {
		case v > 0:
			grossProfit += v
			wins++
		case v < 0:
			grossLoss += v
			losses++
		}
	}
	return grossProfit, math.Abs(grossLoss), wins, losses
}

// computeProfitFactor calculates grossProfit / grossLoss.
// Without losses the result is +Inf when there is any profit, else 0.
func computeProfitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss > 0 {
		return grossProfit / grossLoss
	}
	if grossProfit > 0 {
		return math.Inf(1)
	}
	return 0
}

// computePercent calculates part / total * 100 (0 when total is 0).
func computePercent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// computeAverage calculates total / n (0 when n is 0).
func computeAverage(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// computeMaxDrawdown calculates worst peak-to-trough on cumulative values.
// The running peak starts at 0. Values must be in chronological order.
func computeMaxDrawdown(values []float64) float64 {
	cumulative := 0.0
	peak := 0.0
	maxDrawdown := 0.0

	for _, v := range values {
		cumulative += v
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

// computePeakCapitalDrawdown calculates max drawdown and its percentage.
// The percentage is relative to the capital implied at the peak (capital + peak P&L),
// captured when the peak was set. The peak starts at 0 with peak capital = capital.
func computePeakCapitalDrawdown(values []float64, capital float64) (maxDD, maxDDPercent float64) {
	cumulative := 0.0
	peak := 0.0
	peakCapital := capital

	for _, v := range values {
		cumulative += v
		if cumulative > peak {
			peak = cumulative
			peakCapital = capital + cumulative
		}
		dd := peak - cumulative
		if dd > maxDD {
			maxDD = dd
			if peakCapital != 0 {
				maxDDPercent = dd / peakCapital * 100
			} else {
				maxDDPercent = 0
			}
		}
	}
	return maxDD, maxDDPercent
}
