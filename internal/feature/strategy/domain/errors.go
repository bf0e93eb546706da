package domain

import "errors"

var (
	// ErrInvalidParameter is returned when a strategy parameter or analysis input is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDataUnavailable is returned when candles cannot be fetched or are too few to analyze.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrUnknownStrategy is returned for a strategy id that is not registered.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
