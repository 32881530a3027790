package normalization

import "errors"

// Normalization errors.
var (
	// ErrNoData is returned when the grid has no data rows below the header.
	ErrNoData = errors.New("no data rows: need a header row and at least one data row")

	// ErrNoValidTrades is returned when every data row was skipped.
	ErrNoValidTrades = errors.New("no valid trades found")

	// ErrNoValidPoints is returned when every instrument row was skipped.
	ErrNoValidPoints = errors.New("no valid instrument data found")
)
