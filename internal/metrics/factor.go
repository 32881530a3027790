package metrics

import (
	"encoding/json"
	"math"
	"strconv"
)

// Factor is a ratio that may be +Inf. JSON encodes infinity as the string "Infinity".
type Factor float64

// IsInf reports whether the factor is positive infinity.
func (f Factor) IsInf() bool {
	return math.IsInf(float64(f), 1)
}

// MarshalJSON implements json.Marshaler.
func (f Factor) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsNaN(v) || math.IsInf(v, -1):
		return []byte("0"), nil
	}
	return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Factor) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*f = Factor(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Factor(v)
	return nil
}
