package jravan

import (
	"errors"
	"fmt"
)

// ErrSkip is wrapped by every per-record rejection. A skipped record is
// counted and the scan continues.
var ErrSkip = errors.New("record skipped")

// Skip reasons.
var (
	ErrTruncated    = fmt.Errorf("%w: truncated", ErrSkip)
	ErrRecordType   = fmt.Errorf("%w: record type mismatch", ErrSkip)
	ErrUnconfirmed  = fmt.Errorf("%w: data not confirmed", ErrSkip)
	ErrDate         = fmt.Errorf("%w: invalid date", ErrSkip)
	ErrUnknownVenue = fmt.Errorf("%w: unknown venue", ErrSkip)
	ErrRaceID       = fmt.Errorf("%w: malformed race number fields", ErrSkip)
	ErrMissingKey   = fmt.Errorf("%w: missing registration number", ErrSkip)
	ErrDistance     = fmt.Errorf("%w: distance out of range", ErrSkip)
	ErrSurface      = fmt.Errorf("%w: unknown surface", ErrSkip)
	ErrPaceTime     = fmt.Errorf("%w: pace time out of range", ErrSkip)
)

// ErrSourceRoot is returned when a source root directory does not exist.
var ErrSourceRoot = errors.New("source root not found")

var reasons = []struct { //nolint:gochecknoglobals // read-only lookup table
	err    error
	reason string
}{
	{ErrTruncated, "truncated"},
	{ErrRecordType, "record_type"},
	{ErrUnconfirmed, "unconfirmed"},
	{ErrDate, "date"},
	{ErrUnknownVenue, "unknown_venue"},
	{ErrRaceID, "race_id"},
	{ErrMissingKey, "missing_key"},
	{ErrDistance, "distance"},
	{ErrSurface, "surface"},
	{ErrPaceTime, "pace_time"},
}

// Reason returns the metric label for a skip error, "other" for an
// unrecognised skip and "" for nil or non-skip errors.
func Reason(err error) string {
	if err == nil || !errors.Is(err, ErrSkip) {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "other"
}

// IsSkip reports whether err is a per-record rejection.
func IsSkip(err error) bool {
	return errors.Is(err, ErrSkip)
}
