// Package period finds the best and worst fixed-length windows of a weekly P&L series.
package period

import (
	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/weekly"
)

// Window is the outcome of a best/worst window search. Starts are 1-indexed weeks.
type Window struct {
	Best       float64 `json:"best"`
	Worst      float64 `json:"worst"`
	BestStart  int     `json:"bestStart"`
	WorstStart int     `json:"worstStart"`
}

// FindBestWorst scans every window of windowSize consecutive weeks of a cumulative
// weekly series. A window's P&L is cum[end] - cum[start-1] (cum[end] when start is 1).
// Ties keep the earliest window. Returns false when the series is empty, shorter than
// the window, or windowSize is below 1.
func FindBestWorst(cumulativeByWeek []float64, windowSize int) (Window, bool) {
	n := len(cumulativeByWeek)
	if n == 0 || windowSize < 1 || n < windowSize {
		return Window{}, false
	}

	w := Window{BestStart: 1, WorstStart: 1}
	for i := 0; i+windowSize <= n; i++ {
		delta := windowDelta(cumulativeByWeek, i, windowSize)
		if i == 0 || delta > w.Best {
			w.Best = delta
			w.BestStart = i + 1
		}
		if i == 0 || delta < w.Worst {
			w.Worst = delta
			w.WorstStart = i + 1
		}
	}
	return w, true
}

// windowDelta returns the P&L of the window starting at zero-based index i.
func windowDelta(cum []float64, i, size int) float64 {
	end := cum[i+size-1]
	if i == 0 {
		return end
	}
	return end - cum[i-1]
}

// Analysis is the period view of one strategy for a selected week range.
type Analysis struct {
	BeginningPL      float64   `json:"beginningPL"` // cumulative P&L after the first windowSize weeks
	CurrentPL        float64   `json:"currentPL"`   // P&L of the selected range
	BestPL           float64   `json:"bestPL"`
	WorstPL          float64   `json:"worstPL"`
	BestStart        int       `json:"bestStart"`
	WorstStart       int       `json:"worstStart"`
	WindowSize       int       `json:"windowSize"`
	CumulativeByWeek []float64 `json:"cumulativeByWeek"`
}

// Analyze computes the period analysis of all trades over weeks startWeek..endWeek.
// The window size is the length of the selected range. Without enough weeks the best
// and worst values are 0 with start week 1.
func Analyze(all []domain.TradeRecord, plType domain.PLType, startWeek, endWeek int) Analysis {
	cum := weekly.Aggregate(all, plType).CumulativeByWeek
	n := len(cum)
	windowSize := endWeek - startWeek + 1

	a := Analysis{
		BestStart:        1,
		WorstStart:       1,
		WindowSize:       windowSize,
		CumulativeByWeek: cum,
	}

	switch {
	case windowSize >= 1 && windowSize <= n:
		a.BeginningPL = cum[windowSize-1]
	case n > 0:
		a.BeginningPL = cum[n-1]
	}

	if endWeek >= 1 && endWeek <= n && startWeek >= 1 {
		a.CurrentPL = cum[endWeek-1]
		if startWeek > 1 {
			a.CurrentPL -= cum[startWeek-2]
		}
	}

	if w, ok := FindBestWorst(cum, windowSize); ok {
		a.BestPL = w.Best
		a.WorstPL = w.Worst
		a.BestStart = w.BestStart
		a.WorstStart = w.WorstStart
	}
	return a
}
