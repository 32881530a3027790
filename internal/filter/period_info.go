package filter

import (
	"time"

	"pnl-dashboard/internal/domain"
)

// TimePeriodInfo summarizes the date span of a trade view.
type TimePeriodInfo struct {
	FirstDate         time.Time `json:"firstDate"`
	LastDate          time.Time `json:"lastDate"`
	TotalTrades       int       `json:"totalTrades"`
	Months            int       `json:"months"` // inclusive calendar months
	AvgTradesPerMonth float64   `json:"avgTradesPerMonth"`
}

// TimePeriod returns span information for date-ordered trades, or false when empty.
func TimePeriod(trades []domain.TradeRecord) (TimePeriodInfo, bool) {
	if len(trades) == 0 {
		return TimePeriodInfo{}, false
	}
	first := trades[0].Date
	last := trades[len(trades)-1].Date
	months := MonthsSpan(first, last)
	return TimePeriodInfo{
		FirstDate:         first,
		LastDate:          last,
		TotalTrades:       len(trades),
		Months:            months,
		AvgTradesPerMonth: float64(len(trades)) / float64(months),
	}, true
}

// MonthsSpan counts calendar months from first to last, inclusive of both.
func MonthsSpan(first, last time.Time) int {
	return (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month()) + 1
}
