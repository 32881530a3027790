// Package format renders dashboard numbers the way the UI shows them.
package format

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const rupee = "₹"

var half = decimal.NewFromFloat(0.5)

// Currency rounds half up to whole rupees with Indian digit grouping: ₹12,34,567.
// Negative values render as ₹-1,234 and NaN as ₹0.
func Currency(v float64) string {
	switch {
	case math.IsNaN(v):
		return rupee + "0"
	case math.IsInf(v, 1):
		return rupee + "∞"
	case math.IsInf(v, -1):
		return rupee + "-∞"
	}

	rounded := decimal.NewFromFloat(v).Add(half).Floor()
	digits := rounded.Abs().String()
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return rupee + sign + groupIndian(digits)
}

// groupIndian inserts separators after the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// ProfitFactor renders +Inf as ∞ and everything else with two decimals.
func ProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}
	if math.IsNaN(pf) {
		return "0.00"
	}
	return decimal.NewFromFloat(pf).StringFixed(2)
}

// Percent renders a percentage with two decimals.
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00%"
	}
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// Number renders a value with two decimals.
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// ShortDate renders a calendar date like "2 Jan 2006".
func ShortDate(t time.Time) string {
	return t.Format("2 Jan 2006")
}

// MonthLabel renders "Jan 2006" for chart axes.
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}
