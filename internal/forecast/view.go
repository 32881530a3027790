package forecast

import (
	"errors"
	"fmt"
)

// ErrUnknownView is returned for a view name outside the known set.
var ErrUnknownView = errors.New("unknown forecast view")

// View selects a chart subset of the projections.
type View string

const (
	ViewAll    View = "all"
	ViewOneYr  View = "1Yr"
	ViewTwoYr  View = "2Yr"
	ViewFourYr View = "4Yr"
)

var viewHorizons = map[View][]string{
	ViewOneYr:  {"1M", "2M", "3M", "6M", "9M", "1Y"},
	ViewTwoYr:  {"3M", "6M", "9M", "1Y", "2Y"},
	ViewFourYr: {"1Y", "2Y", "4Y"},
}

// ParseView validates a view name. An empty string means ViewAll.
func ParseView(s string) (View, error) {
	v := View(s)
	if s == "" || v == ViewAll {
		return ViewAll, nil
	}
	if _, ok := viewHorizons[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
	return v, nil
}

// Filter returns the projections shown in view v, keeping their order.
func (r Result) Filter(v View) []Projection {
	names, ok := viewHorizons[v]
	if !ok {
		return r.Projections
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	out := make([]Projection, 0, len(names))
	for _, p := range r.Projections {
		if keep[p.ShortName] {
			out = append(out, p)
		}
	}
	return out
}
