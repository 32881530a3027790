package domain

import "time"

// Instrument is a named external reference series used as a chart overlay.
type Instrument struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Data      []PricePoint `json:"data"` // sorted by date
	CreatedAt time.Time    `json:"createdAt"`
}

// PricePoint is one close value of an instrument.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// InstrumentPoint is an instrument value aligned to a strategy trade date.
// Value and PercentChange are nil when no instrument point could be matched.
type InstrumentPoint struct {
	Date          time.Time `json:"date"`
	Value         *float64  `json:"value"`
	PercentChange *float64  `json:"percentChange"`
}

// Clone returns a deep copy of the instrument.
func (i Instrument) Clone() Instrument {
	out := i
	if i.Data != nil {
		out.Data = make([]PricePoint, len(i.Data))
		copy(out.Data, i.Data)
	}
	return out
}
