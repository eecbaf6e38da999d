package forecast

import "errors"

var (
	// ErrMissingData is returned when a required fixed-point string is absent.
	ErrMissingData = errors.New("forecast: missing data")
	// ErrMalformedData is returned for strings that are not plain decimal digits.
	ErrMalformedData = errors.New("forecast: malformed data")
	// ErrDegenerateModel is returned when no completed week can feed the profile.
	ErrDegenerateModel = errors.New("forecast: degenerate model")
	// ErrDivisionByZero is returned for a zero pool valuation or zero elapsed time.
	ErrDivisionByZero = errors.New("forecast: division by zero")
)
