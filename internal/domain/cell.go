package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// CellKind is the variant tag of a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellDate
	CellNumber
	CellText
)

// Cell is one spreadsheet cell at the ingestion boundary.
// Exactly one of the value fields is meaningful, selected by Kind.
type Cell struct {
	Kind   CellKind
	Time   time.Time
	Number float64
	Text   string
}

// EmptyCell returns a cell with no value.
func EmptyCell() Cell { return Cell{Kind: CellEmpty} }

// DateCell returns a native date cell.
func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Time: t} }

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// TextCell returns a text cell.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// String renders the cell as text. Numbers use the shortest representation.
func (c Cell) String() string {
	switch c.Kind {
	case CellDate:
		return c.Time.Format(time.RFC3339)
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// MarshalJSON encodes the cell as a JSON scalar.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellDate:
		return json.Marshal(c.Time)
	case CellNumber:
		return json.Marshal(c.Number)
	case CellText:
		return json.Marshal(c.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar. Strings become text cells, numbers numeric cells,
// null an empty cell and booleans their text form.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = EmptyCell()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = TextCell(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = TextCell(strconv.FormatBool(b))
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("decode cell %s: %w", data, err)
		}
		*c = NumberCell(f)
	}
	return nil
}

// TextRow builds a row of text cells. Empty strings become empty cells.
func TextRow(values ...string) []Cell {
	row := make([]Cell, len(values))
	for i, v := range values {
		if v == "" {
			row[i] = EmptyCell()
			continue
		}
		row[i] = TextCell(v)
	}
	return row
}

// CellAt returns row[idx], or an empty cell when the row is too short.
func CellAt(row []Cell, idx int) Cell {
	if idx < 0 || idx >= len(row) {
		return EmptyCell()
	}
	return row[idx]
}
