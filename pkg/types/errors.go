package types

import "errors"

// Sentinel errors returned by the lifecycle operations. The HTTP layer maps
// each one to a distinct caller-visible status; anything else is normalized to
// a generic internal error with the detail logged for operators.
var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrInvalidID       = errors.New("invalid ID")
	ErrNotFound        = errors.New("outage not found")
	ErrAlreadyResolved = errors.New("outage already resolved")
)
