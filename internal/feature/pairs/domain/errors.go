package domain

import "errors"

// ErrDuplicatePair is returned when a pair with the same symbol is already registered.
var ErrDuplicatePair = errors.New("trading pair already exists")
