package domain

import "errors"

// ErrMappingIncomplete is returned when a mandatory column is unmapped or an index is negative.
var ErrMappingIncomplete = errors.New("column mapping incomplete: date and P&L columns are required")

// ColumnMapping maps trade fields to zero-based column indices. Nil means unmapped.
type ColumnMapping struct {
	Date         *int `json:"date"`
	PL           *int `json:"pl"`
	Charges      *int `json:"charges"`
	Lots         *int `json:"lots"`
	EntryType    *int `json:"entryType"`
	ExitCriteria *int `json:"exitCriteria"`
}

// Validate checks that Date and PL are mapped and no index is negative.
func (m ColumnMapping) Validate() error {
	if m.Date == nil || m.PL == nil {
		return ErrMappingIncomplete
	}
	for _, idx := range []*int{m.Date, m.PL, m.Charges, m.Lots, m.EntryType, m.ExitCriteria} {
		if idx != nil && *idx < 0 {
			return ErrMappingIncomplete
		}
	}
	return nil
}

// Clone returns a deep copy of the mapping.
func (m ColumnMapping) Clone() ColumnMapping {
	return ColumnMapping{
		Date:         cloneIndex(m.Date),
		PL:           cloneIndex(m.PL),
		Charges:      cloneIndex(m.Charges),
		Lots:         cloneIndex(m.Lots),
		EntryType:    cloneIndex(m.EntryType),
		ExitCriteria: cloneIndex(m.ExitCriteria),
	}
}

// Column returns a pointer to idx, for building mappings inline.
func Column(idx int) *int {
	return &idx
}

func cloneIndex(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
