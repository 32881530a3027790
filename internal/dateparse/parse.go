// Package dateparse resolves heterogeneous spreadsheet date cells to calendar dates.
package dateparse

import (
	"strconv"
	"strings"
	"time"

	freeform "github.com/araddon/dateparse"

	"pnl-dashboard/internal/domain"
)

// Serial date bounds (exclusive). Numbers in this range are spreadsheet day counts.
const (
	serialMin = 40000
	serialMax = 60000
)

// serialEpoch is day zero of spreadsheet serial dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Parse returns the date a cell represents, or false when nothing matches.
// Resolution order, first match wins:
//  1. native date cell
//  2. number in (40000, 60000) as a serial day count
//  3. D-M-Y
//  4. D/M/Y
//  5. Y-M-D when the first hyphen part has 4 characters
//  6. free-form parse
//
// D-M-Y and Y-M-D are told apart only by the first segment's length.
func Parse(c domain.Cell) (time.Time, bool) {
	var s string
	switch c.Kind {
	case domain.CellEmpty:
		return time.Time{}, false
	case domain.CellDate:
		if c.Time.IsZero() {
			return time.Time{}, false
		}
		return c.Time.UTC(), true
	case domain.CellNumber:
		if c.Number == 0 {
			return time.Time{}, false
		}
		s = strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		s = c.Text
	}
	return ParseString(s)
}

// ParseString applies the text resolution rules of Parse.
func ParseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "undefined" || s == "null" {
		return time.Time{}, false
	}

	if v, ok := LeadingFloat(s); ok && v > serialMin && v < serialMax {
		return serialToDate(v), true
	}

	if parts := strings.Split(s, "-"); len(parts) == 3 {
		if t, ok := dayMonthYear(parts[0], parts[1], parts[2]); ok {
			return t, true
		}
	}

	if parts := strings.Split(s, "/"); len(parts) == 3 {
		if t, ok := dayMonthYear(parts[0], parts[1], parts[2]); ok {
			return t, true
		}
	}

	if parts := strings.Split(s, "-"); len(parts) == 3 && len(parts[0]) == 4 {
		if t, ok := dayMonthYear(parts[2], parts[1], parts[0]); ok {
			return t, true
		}
	}

	t, err := freeform.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// serialToDate converts a serial day count (fractions allowed) to a UTC time.
func serialToDate(days float64) time.Time {
	ms := int64(days * 24 * 60 * 60 * 1000)
	return serialEpoch.Add(time.Duration(ms) * time.Millisecond)
}

// dayMonthYear builds a date from text parts when day is 1-31, month 1-12 and year > 1900.
// Out-of-month days roll over into the next month (31-02 becomes early March).
func dayMonthYear(dayText, monthText, yearText string) (time.Time, bool) {
	day, ok := LeadingInt(dayText)
	if !ok {
		return time.Time{}, false
	}
	month, ok := LeadingInt(monthText)
	if !ok {
		return time.Time{}, false
	}
	year, ok := LeadingInt(yearText)
	if !ok {
		return time.Time{}, false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 || year <= 1900 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
