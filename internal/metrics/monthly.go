package metrics

import (
	"sort"

	"pnl-dashboard/internal/domain"
)

// YearReturns holds the monthly P&L sums of one calendar year.
// Months without trades have Present[m] == false.
type YearReturns struct {
	Year    int         `json:"year"`
	Months  [12]float64 `json:"months"`
	Present [12]bool    `json:"present"`
	Total   float64     `json:"total"`
}

// MonthlyReturns sums P&L per calendar month, years ascending.
func MonthlyReturns(trades []domain.TradeRecord, plType domain.PLType) []YearReturns {
	byYear := make(map[int]*YearReturns)
	for _, t := range trades {
		y := t.Date.Year()
		yr, ok := byYear[y]
		if !ok {
			yr = &YearReturns{Year: y}
			byYear[y] = yr
		}
		m := int(t.Date.Month()) - 1
		v := t.PL(plType)
		yr.Months[m] += v
		yr.Present[m] = true
		yr.Total += v
	}

	out := make([]YearReturns, 0, len(byYear))
	for _, yr := range byYear {
		out = append(out, *yr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
