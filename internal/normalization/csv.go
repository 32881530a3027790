package normalization

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"pnl-dashboard/internal/domain"
)

// ReadCSV reads a comma-separated trade log into text cells.
// Rows may have different lengths; blank fields become empty cells.
func ReadCSV(r io.Reader) ([][]domain.Cell, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	rows := make([][]domain.Cell, 0, len(records))
	for i, rec := range records {
		if i == 0 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
		for j := range rec {
			rec[j] = strings.TrimSpace(rec[j])
		}
		rows = append(rows, domain.TextRow(rec...))
	}
	return rows, nil
}
