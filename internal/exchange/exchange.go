// Package exchange implements the versioned export/import file format.
package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pnl-dashboard/internal/domain"
)

// Version is written into every export.
const Version = "1.3"

var (
	ErrNothingToExport = errors.New("no strategies to export")
	ErrInvalidFormat   = errors.New("invalid import file format")
	ErrUnknownPolicy   = errors.New("unknown import policy")
)

// Policy decides how imported strategies combine with existing ones.
type Policy string

const (
	PolicyReplace Policy = "replace"
	PolicyMerge   Policy = "merge"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyReplace, PolicyMerge:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Envelope is the export file document.
type Envelope struct {
	Version    string            `json:"version"`
	ExportDate time.Time         `json:"exportDate"`
	Strategies []domain.Strategy `json:"strategies"`
}

// Export wraps strategies in an envelope stamped with now.
func Export(strategies []domain.Strategy, now time.Time) (Envelope, error) {
	if len(strategies) == 0 {
		return Envelope{}, ErrNothingToExport
	}
	out := make([]domain.Strategy, len(strategies))
	for i := range strategies {
		out[i] = strategies[i].Clone()
	}
	return Envelope{Version: Version, ExportDate: now.UTC(), Strategies: out}, nil
}

// Marshal renders an envelope as indented JSON.
func Marshal(env Envelope) ([]byte, error) {
	return json.MarshalIndent(env, "", "  ")
}

// FileName returns the suggested download name for an export made at now.
func FileName(now time.Time) string {
	return "trading-strategies-" + now.UTC().Format("2006-01-02") + ".json"
}

// Parse decodes an import file. The strategies field must be present and be a list.
func Parse(data []byte) (Envelope, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	raw, ok := probe["strategies"]
	if !ok || len(raw) == 0 || raw[0] != '[' {
		return Envelope{}, ErrInvalidFormat
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	for i := range env.Strategies {
		for j := range env.Strategies[i].AllTrades {
			t := &env.Strategies[i].AllTrades[j]
			t.Date = t.Date.UTC()
		}
	}
	return env, nil
}
