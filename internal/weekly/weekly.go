// Package weekly buckets date-ordered trades into Sunday-aligned calendar weeks.
package weekly

import (
	"time"

	"pnl-dashboard/internal/domain"
)

// Result is the weekly view of a trade sequence.
// Only weeks containing at least one trade appear; gaps are not represented.
type Result struct {
	CumulativeByWeek []float64              `json:"cumulativeByWeek"` // running total at each week end
	TradesByWeek     [][]domain.TradeRecord `json:"tradesByWeek"`
	WeekStarts       []time.Time            `json:"weekStarts"` // Sunday of each bucket
}

// Len returns the number of week buckets.
func (r Result) Len() int {
	return len(r.CumulativeByWeek)
}

// Aggregate groups trades by week. Trades must be sorted by date.
// A bucket closes only when a trade's week start is strictly later than the open one;
// the last bucket is always flushed.
func Aggregate(trades []domain.TradeRecord, plType domain.PLType) Result {
	if len(trades) == 0 {
		return Result{
			CumulativeByWeek: []float64{},
			TradesByWeek:     [][]domain.TradeRecord{},
			WeekStarts:       []time.Time{},
		}
	}

	var res Result
	cumulative := 0.0
	current := WeekStart(trades[0].Date)
	weekPL := 0.0
	var bucket []domain.TradeRecord

	for _, t := range trades {
		start := WeekStart(t.Date)
		if start.After(current) {
			cumulative += weekPL
			res.CumulativeByWeek = append(res.CumulativeByWeek, cumulative)
			res.TradesByWeek = append(res.TradesByWeek, bucket)
			res.WeekStarts = append(res.WeekStarts, current)

			current = start
			weekPL = t.PL(plType)
			bucket = []domain.TradeRecord{t}
			continue
		}
		weekPL += t.PL(plType)
		bucket = append(bucket, t)
	}

	cumulative += weekPL
	res.CumulativeByWeek = append(res.CumulativeByWeek, cumulative)
	res.TradesByWeek = append(res.TradesByWeek, bucket)
	res.WeekStarts = append(res.WeekStarts, current)

	return res
}

// WeekStart returns midnight of the Sunday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// TradesInRange concatenates the trades of weeks start..end (1-indexed, inclusive).
// Bounds past the last week are clamped.
func (r Result) TradesInRange(start, end int) []domain.TradeRecord {
	var out []domain.TradeRecord
	for i := start - 1; i < end && i < len(r.TradesByWeek); i++ {
		if i < 0 {
			continue
		}
		out = append(out, r.TradesByWeek[i]...)
	}
	return out
}
