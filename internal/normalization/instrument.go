package normalization

import (
	"math"
	"sort"
	"time"

	"pnl-dashboard/internal/dateparse"
	"pnl-dashboard/internal/domain"
)

// NormalizeInstrument reads an instrument grid: column 0 date, column 1 close.
// Row 0 is the header. Returns the points sorted by date and the skipped row count.
func NormalizeInstrument(rows [][]domain.Cell) ([]domain.PricePoint, int, error) {
	if len(rows) < 2 {
		return nil, 0, ErrNoData
	}

	points := make([]domain.PricePoint, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		date, ok := dateparse.Parse(domain.CellAt(row, 0))
		if !ok {
			skipped++
			continue
		}
		closeValue, ok := cellNumber(domain.CellAt(row, 1))
		if !ok {
			skipped++
			continue
		}
		points = append(points, domain.PricePoint{Date: date, Close: closeValue})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	if len(points) == 0 {
		return nil, skipped, ErrNoValidPoints
	}
	return points, skipped, nil
}

// AlignInstrument matches instrument points to strategy trade dates.
// Only points inside [first, last] trade date are considered. Each date takes the
// nearest point, scanning forward and stopping after the first point past the date.
// PercentChange is relative to the first in-range close.
// Returns nil when either input is empty or no point falls in range.
func AlignInstrument(points []domain.PricePoint, dates []time.Time) []domain.InstrumentPoint {
	if len(points) == 0 || len(dates) == 0 {
		return nil
	}

	first, last := dates[0], dates[len(dates)-1]
	relevant := make([]domain.PricePoint, 0, len(points))
	for _, p := range points {
		if !p.Date.Before(first) && !p.Date.After(last) {
			relevant = append(relevant, p)
		}
	}
	if len(relevant) == 0 {
		return nil
	}

	base := relevant[0].Close
	out := make([]domain.InstrumentPoint, 0, len(dates))
	for _, d := range dates {
		var closest *domain.PricePoint
		minDiff := time.Duration(math.MaxInt64)
		for i := range relevant {
			diff := relevant[i].Date.Sub(d)
			if diff < 0 {
				diff = -diff
			}
			if diff < minDiff {
				minDiff = diff
				closest = &relevant[i]
			}
			if relevant[i].Date.After(d) {
				break
			}
		}

		point := domain.InstrumentPoint{Date: d}
		if closest != nil {
			value := closest.Close
			point.Value = &value
			if base != 0 {
				pct := (closest.Close - base) / base * 100
				point.PercentChange = &pct
			}
		}
		out = append(out, point)
	}
	return out
}
