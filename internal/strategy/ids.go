package strategy

import (
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// Id prefixes.
const (
	StrategyIDPrefix   = "strategy_"
	InstrumentIDPrefix = "instrument_"
)

// NewID returns prefix followed by a base58-encoded random UUID.
func NewID(prefix string) string {
	id := uuid.New()
	return prefix + base58.Encode(id[:])
}
