package service

import "errors"

// Sentinel kinds for builder errors.
var (
	ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD")
	ErrNoYears     = errors.New("no years selected")
	ErrNilSink     = errors.New("output sink is required")
)
