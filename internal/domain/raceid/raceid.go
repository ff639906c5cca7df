// Package raceid builds and parses the 16-digit JRA-VAN race identifier.
//
// Layout: YYYYMMDDJJKKNNRR
//
//	YYYY year, MM month, DD day,
//	JJ   venue code (01-10),
//	KK   kai (meeting number),
//	NN   nichi (day of the meeting),
//	RR   race number.
//
// Example: 2026012406010208 is the 8th race of day 2 of the 1st Nakayama
// meeting on 2026-01-24.
package raceid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Length is the number of digits in a race identifier.
const Length = 16

// ShortLength is the number of digits in the externally sourced race id.
const ShortLength = 12

// ErrUnknownVenue is returned when a venue code or name is not one of the
// ten known venues.
var ErrUnknownVenue = errors.New("unknown venue")

// ErrFieldRange is returned when a numeric part does not fit its fixed width.
var ErrFieldRange = errors.New("race id field out of range")

const (
	maxYear = 9999
	maxPair = 99
)

// Fields is the parsed form of a race identifier.
type Fields struct {
	Year       int
	Month      int
	Day        int
	VenueCode  string
	Kai        int
	Nichi      int
	RaceNumber int
}

// Date returns the race date as YYYY-MM-DD.
func (f Fields) Date() string {
	return fmt.Sprintf("%04d-%02d-%02d", f.Year, f.Month, f.Day)
}

// VenueName returns the display name of the venue, or "?(JJ)" when unknown.
func (f Fields) VenueName() string {
	if name, ok := VenueName(f.VenueCode); ok {
		return name
	}
	return "?(" + f.VenueCode + ")"
}

// ID re-assembles the identifier. A one-digit venue code is left-padded.
// The numeric parts are not range-checked; use Build for untrusted input.
func (f Fields) ID() string {
	code := f.VenueCode
	if len(code) == 1 {
		code = "0" + code
	}
	return fmt.Sprintf("%04d%02d%02d%s%02d%02d%02d",
		f.Year, f.Month, f.Day, code, f.Kai, f.Nichi, f.RaceNumber)
}

// Build assembles a race identifier from its numeric parts. venue may be a
// venue code ("06", "6") or a display name ("中山").
func Build(year, month, day int, venue string, kai, nichi, raceNumber int) (string, error) {
	code, ok := VenueCode(venue)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVenue, venue)
	}
	f := Fields{
		Year:       year,
		Month:      month,
		Day:        day,
		VenueCode:  code,
		Kai:        kai,
		Nichi:      nichi,
		RaceNumber: raceNumber,
	}
	if err := f.checkWidths(); err != nil {
		return "", err
	}
	return f.ID(), nil
}

// checkWidths reports the first numeric part that would not render in its
// fixed number of digits.
func (f Fields) checkWidths() error {
	if f.Year < 0 || f.Year > maxYear {
		return fmt.Errorf("%w: year %d", ErrFieldRange, f.Year)
	}
	pairs := []struct {
		name string
		v    int
	}{
		{"month", f.Month},
		{"day", f.Day},
		{"kai", f.Kai},
		{"nichi", f.Nichi},
		{"race", f.RaceNumber},
	}
	for _, p := range pairs {
		if p.v < 0 || p.v > maxPair {
			return fmt.Errorf("%w: %s %d", ErrFieldRange, p.name, p.v)
		}
	}
	return nil
}

// BuildFromShortID converts a 12-digit external id (YYYYKKjjNNRR, where jj is
// the external site's own venue numbering) into a race identifier, taking
// the month and day from date and the venue code from venueName.
//
// date accepts YYYY-MM-DD or YYYY/M/D. The external venue digits are ignored
// because they do not follow the JRA-VAN numbering.
func BuildFromShortID(shortID, date, venueName string) (string, bool) {
	if len(shortID) != ShortLength || !isDigits(shortID) {
		return "", false
	}
	code, ok := VenueCode(strings.TrimSpace(venueName))
	if !ok {
		return "", false
	}

	parts := strings.Split(strings.ReplaceAll(strings.TrimSpace(date), "/", "-"), "-")
	if len(parts) != 3 {
		return "", false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return "", false
	}

	year := shortID[0:4]
	kai := shortID[4:6]
	nichi := shortID[8:10]
	race := shortID[10:12]
	return fmt.Sprintf("%s%02d%02d%s%s%s%s", year, month, day, code, kai, nichi, race), true
}

// Parse splits a race identifier into its fields. It reports false when id is
// not exactly 16 digits.
func Parse(id string) (Fields, bool) {
	if len(id) != Length || !isDigits(id) {
		return Fields{}, false
	}
	num := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	return Fields{
		Year:       num(id[0:4]),
		Month:      num(id[4:6]),
		Day:        num(id[6:8]),
		VenueCode:  id[8:10],
		Kai:        num(id[10:12]),
		Nichi:      num(id[12:14]),
		RaceNumber: num(id[14:16]),
	}, true
}

// HumanReadable formats id for diagnostics, e.g.
// "2026年1月24日 中山 1回2日目 8R". Unparsable ids are returned unchanged.
func HumanReadable(id string) string {
	f, ok := Parse(id)
	if !ok {
		return id
	}
	return fmt.Sprintf("%d年%d月%d日 %s %d回%d日目 %dR",
		f.Year, f.Month, f.Day, f.VenueName(), f.Kai, f.Nichi, f.RaceNumber)
}

// DatePath returns the YYYY/MM/DD directory fragment for id, or "" when id
// does not parse.
func DatePath(id string) string {
	if _, ok := Parse(id); !ok {
		return ""
	}
	return id[0:4] + "/" + id[4:6] + "/" + id[6:8]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
