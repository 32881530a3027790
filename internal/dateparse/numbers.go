package dateparse

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingFloatRe = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)
	leadingIntRe   = regexp.MustCompile(`^[+-]?\d+`)
)

// LeadingFloat parses the longest numeric prefix of s, ignoring leading whitespace.
// "12.5abc" yields 12.5; "abc" yields false. "Infinity" prefixes yield ±Inf.
func LeadingFloat(s string) (float64, bool) {
	m := leadingFloatRe.FindString(strings.TrimLeft(s, " \t\r\n\v\f"))
	if m == "" {
		return 0, false
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// Exponent overflow still yields ±Inf alongside a range error.
		if errors.Is(err, strconv.ErrRange) {
			return v, true
		}
		return 0, false
	}
	return v, true
}

// LeadingInt parses the leading base-10 integer of s, ignoring leading whitespace.
func LeadingInt(s string) (int, bool) {
	m := leadingIntRe.FindString(strings.TrimLeft(s, " \t\r\n\v\f"))
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}
