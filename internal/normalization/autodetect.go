package normalization

import (
	"strings"

	"pnl-dashboard/internal/domain"
)

// Header keywords per field, matched as case-insensitive substrings.
var (
	dateKeywords    = []string{"date", "day", "time", "dt", "fecha"}
	plKeywords      = []string{"profit", "loss", "p&l", "pl", "pnl", "return", "ganancia", "perdida"}
	chargesKeywords = []string{"charge", "fee", "commission", "cost", "expense", "comision", "cargo"}
	lotsKeywords    = []string{"lot", "delta", "size", "quantity", "qty", "cantidad", "tamaño"}
)

// DetectColumns pre-fills a mapping from header text.
// Columns are scanned left to right and a later match overwrites an earlier one,
// so the rightmost matching column wins for each field. One header may fill several fields.
// Entry type and exit criteria are never detected.
func DetectColumns(header []domain.Cell) domain.ColumnMapping {
	var m domain.ColumnMapping
	for i, c := range header {
		h := strings.ToLower(c.String())
		if containsAny(h, dateKeywords) {
			m.Date = domain.Column(i)
		}
		if containsAny(h, plKeywords) {
			m.PL = domain.Column(i)
		}
		if containsAny(h, chargesKeywords) {
			m.Charges = domain.Column(i)
		}
		if containsAny(h, lotsKeywords) {
			m.Lots = domain.Column(i)
		}
	}
	return m
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
