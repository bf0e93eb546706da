package domain

import "errors"

var (
	// ErrInvalidParameter is returned for a malformed trade or query.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDataUnavailable is returned when the trade store cannot be read or written.
	ErrDataUnavailable = errors.New("data unavailable")
)
