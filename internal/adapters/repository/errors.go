package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("race not found")
	ErrEmptyRaceID = errors.New("empty race id")
)
