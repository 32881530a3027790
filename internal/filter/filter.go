// Package filter derives the filtered, cumulative trade view of a strategy.
package filter

import (
	"sort"
	"strconv"
	"time"

	"pnl-dashboard/internal/domain"
)

// Apply returns the trades matching the year and month selection as a new slice.
// year is domain.YearAll or a 4-digit year. With year ALL a month filter matches
// month-of-year only and ignores the filter's own year.
func Apply(all []domain.TradeRecord, year string, month *domain.MonthFilter) []domain.TradeRecord {
	out := make([]domain.TradeRecord, 0, len(all))

	selectedYear, byYear := parseYear(year)
	for _, t := range all {
		if byYear && t.Date.Year() != selectedYear {
			continue
		}
		if month != nil && !matchesMonth(t.Date, month, byYear) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesMonth(d time.Time, month *domain.MonthFilter, byYear bool) bool {
	if int(d.Month())-1 != month.Month {
		return false
	}
	if !byYear {
		return true
	}
	return month.Year != nil && d.Year() == *month.Year
}

// parseYear reports the numeric year and whether a year filter is active.
// An unparseable year filters everything out, like a year no trade has.
func parseYear(year string) (int, bool) {
	if year == "" || year == domain.YearAll {
		return 0, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return -1, true
	}
	return y, true
}

// Cumulative returns a copy of trades with running CumulativePL and
// CumulativePLPercent (cum / capital * 100, or 0 when capital is 0).
func Cumulative(trades []domain.TradeRecord, plType domain.PLType, capital float64) []domain.TradeRecord {
	out := domain.CloneTrades(trades)
	if out == nil {
		out = []domain.TradeRecord{}
	}

	cum := 0.0
	for i := range out {
		cum += out[i].PL(plType)
		out[i].CumulativePL = cum
		out[i].CumulativePLPercent = 0
		if capital != 0 {
			out[i].CumulativePLPercent = cum / capital * 100
		}
	}
	return out
}

// View applies the strategy's selection and computes the cumulative series.
func View(s domain.Strategy, plType domain.PLType) []domain.TradeRecord {
	return Cumulative(Apply(s.AllTrades, s.SelectedYear, s.SelectedMonth), plType, s.Capital)
}

// Years returns the distinct trade years in ascending order.
func Years(all []domain.TradeRecord) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, t := range all {
		y := t.Date.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
