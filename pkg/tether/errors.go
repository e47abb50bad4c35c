package tether

import "errors"

// Table operation errors. Validation errors leave the table untouched;
// ErrCorrupted is permanent once returned.
var (
	ErrNilKey       = errors.New("key must not be nil")
	ErrNilFactory   = errors.New("factory must not be nil")
	ErrDuplicateKey = errors.New("key already present")
	ErrCorrupted    = errors.New("table is corrupted")
)
