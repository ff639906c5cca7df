package sink

import "errors"

// Sentinel kinds for sink errors.
var (
	ErrInvalidRaceID = errors.New("invalid race id")
	ErrMissingKey    = errors.New("missing registration number")
)
