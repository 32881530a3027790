// Package normalization turns raw spreadsheet grids into trade records and instrument series.
package normalization

import (
	"math"
	"sort"

	"pnl-dashboard/internal/dateparse"
	"pnl-dashboard/internal/domain"
)

// Result is the outcome of normalizing one grid.
type Result struct {
	Trades  []domain.TradeRecord // sorted by date, stable
	Skipped int                  // data rows dropped for a bad date or P&L
	Total   int                  // data rows examined (header excluded)
}

// Normalize maps rows to trade records using mapping.
// Row 0 is the header. Rows with an unparseable date or a non-finite P&L are skipped
// and counted. Charges never cause a skip; unmapped or unparseable charges are 0.
// Returns ErrNoValidTrades (with the populated Result) when every row was skipped.
func Normalize(rows [][]domain.Cell, mapping domain.ColumnMapping) (Result, error) {
	if err := mapping.Validate(); err != nil {
		return Result{}, err
	}
	if len(rows) < 2 {
		return Result{}, ErrNoData
	}

	res := Result{
		Trades: make([]domain.TradeRecord, 0, len(rows)-1),
		Total:  len(rows) - 1,
	}

	for _, row := range rows[1:] {
		dateCell := domain.CellAt(row, *mapping.Date)
		date, ok := dateparse.Parse(dateCell)
		if !ok {
			res.Skipped++
			continue
		}

		gross, ok := cellNumber(domain.CellAt(row, *mapping.PL))
		if !ok {
			res.Skipped++
			continue
		}

		charges := 0.0
		if mapping.Charges != nil {
			if v, ok := cellNumber(domain.CellAt(row, *mapping.Charges)); ok {
				charges = v
			}
		}

		res.Trades = append(res.Trades, domain.TradeRecord{
			Date:          date,
			DateText:      dateCell.String(),
			EntryType:     optionalText(row, mapping.EntryType),
			ExitCriteria:  optionalText(row, mapping.ExitCriteria),
			GrossPL:       gross,
			Charges:       charges,
			NetPL:         gross - charges,
			LotsDeltaSize: optionalText(row, mapping.Lots),
		})
	}

	SortTrades(res.Trades)

	if len(res.Trades) == 0 {
		return res, ErrNoValidTrades
	}
	return res, nil
}

// SortTrades sorts trades ascending by date. Equal dates keep input order.
func SortTrades(trades []domain.TradeRecord) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Date.Before(trades[j].Date)
	})
}

// cellNumber reads a finite number from a cell. Text uses leading-prefix parsing.
func cellNumber(c domain.Cell) (float64, bool) {
	var v float64
	switch c.Kind {
	case domain.CellNumber:
		v = c.Number
	case domain.CellText:
		f, ok := dateparse.LeadingFloat(c.Text)
		if !ok {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// optionalText renders a mapped cell as text; unmapped, empty and numeric zero give "".
func optionalText(row []domain.Cell, idx *int) string {
	if idx == nil {
		return ""
	}
	c := domain.CellAt(row, *idx)
	if c.Kind == domain.CellNumber && c.Number == 0 {
		return ""
	}
	return c.String()
}
