package domain

import "time"

// SourceType is where a strategy's rows come from. It never affects analytics.
type SourceType string

const (
	SourceTypeFile   SourceType = "file"
	SourceTypeSheets SourceType = "sheets"
)

// String returns the string representation of SourceType.
func (s SourceType) String() string {
	return string(s)
}

// IsValid checks if the source type is a valid value.
func (s SourceType) IsValid() bool {
	return s == SourceTypeFile || s == SourceTypeSheets
}

// Source is the provenance tag of a strategy.
type Source struct {
	Type   SourceType   `json:"type"`
	Config SheetsConfig `json:"config"`
}

// SheetsConfig locates a remote spreadsheet range. Empty for file sources.
type SheetsConfig struct {
	SpreadsheetID string     `json:"spreadsheetId,omitempty"`
	SheetName     string     `json:"sheetName,omitempty"`
	Range         string     `json:"range,omitempty"`
	FullRange     string     `json:"fullRange,omitempty"` // "<sheet>!<range>"
	LastSync      *time.Time `json:"lastSync,omitempty"`
}

// FileSource returns the default source tag.
func FileSource() Source {
	return Source{Type: SourceTypeFile}
}

// Clone returns a deep copy of the source.
func (s Source) Clone() Source {
	out := s
	if s.Config.LastSync != nil {
		t := *s.Config.LastSync
		out.Config.LastSync = &t
	}
	return out
}
