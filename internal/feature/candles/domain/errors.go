package domain

import "errors"

var (
	// ErrInvalidTimeframe is returned when a timeframe is not one of the supported candle widths.
	ErrInvalidTimeframe = errors.New("invalid timeframe")
)
