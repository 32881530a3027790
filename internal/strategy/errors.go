package strategy

import "errors"

// Store errors
var (
	ErrCapacity            = errors.New("maximum of 10 strategies reached")
	ErrNotFound            = errors.New("strategy not found")
	ErrNoCurrent           = errors.New("no strategy selected")
	ErrInvalidName         = errors.New("strategy name must not be empty")
	ErrInvalidCapital      = errors.New("capital must be a positive number")
	ErrInvalidYear         = errors.New("year must be ALL or a 4-digit year")
	ErrInvalidMonth        = errors.New("month must be between 0 and 11")
	ErrInvalidPLType       = errors.New("pl type must be GROSS or NET")
	ErrInstrumentNotFound  = errors.New("instrument not found")
	ErrInstrumentName      = errors.New("instrument name must not be empty")
	ErrDuplicateInstrument = errors.New("instrument with this name already exists")
)
