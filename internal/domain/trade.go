package domain

import "time"

// TradeRecord is one normalized row of a trade log.
// Immutable after normalization; derived views carry their own copies.
type TradeRecord struct {
	Date          time.Time `json:"date"`              // calendar day of the trade (UTC)
	DateText      string    `json:"dateStr,omitempty"` // raw cell text the date was parsed from
	EntryType     string    `json:"entryType"`
	ExitCriteria  string    `json:"exitCriteria"`
	GrossPL       float64   `json:"grossPL"` // before charges
	Charges       float64   `json:"charges"` // never negative-checked, defaults to 0
	NetPL         float64   `json:"netPL"`   // GrossPL - Charges
	LotsDeltaSize string    `json:"lotsDeltaSize"`

	// Derived view fields, recomputed on every filter / PL type / capital change.
	CumulativePL        float64 `json:"-"`
	CumulativePLPercent float64 `json:"-"`
}

// PL returns the profit/loss value selected by plType.
func (t TradeRecord) PL(plType PLType) float64 {
	if plType == PLTypeGross {
		return t.GrossPL
	}
	return t.NetPL
}

// PLType selects gross (pre-charges) or net (post-charges) values for all derived metrics.
type PLType string

const (
	PLTypeGross PLType = "GROSS"
	PLTypeNet   PLType = "NET"
)

// String returns the string representation of PLType.
func (p PLType) String() string {
	return string(p)
}

// IsValid checks if the PL type is a valid value.
func (p PLType) IsValid() bool {
	return p == PLTypeGross || p == PLTypeNet
}

// CloneTrades returns a copy of trades that shares no backing array with the input.
func CloneTrades(trades []TradeRecord) []TradeRecord {
	if trades == nil {
		return nil
	}
	out := make([]TradeRecord, len(trades))
	copy(out, trades)
	return out
}
