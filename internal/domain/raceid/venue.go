package raceid

import "strings"

// venues is the fixed JRA venue table keyed by two-digit code.
var venues = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	"01": "札幌",
	"02": "函館",
	"03": "福島",
	"04": "新潟",
	"05": "東京",
	"06": "中山",
	"07": "中京",
	"08": "京都",
	"09": "阪神",
	"10": "小倉",
}

// venueCodes is the reverse of venues.
var venueCodes = func() map[string]string { //nolint:gochecknoglobals // derived from venues
	m := make(map[string]string, len(venues))
	for code, name := range venues {
		m[name] = code
	}
	return m
}()

// VenueName returns the display name for a two-digit venue code.
func VenueName(code string) (string, bool) {
	name, ok := venues[code]
	return name, ok
}

// VenueCode resolves a venue code ("6", "06") or display name ("中山") to the
// two-digit venue code.
func VenueCode(venue string) (string, bool) {
	venue = strings.TrimSpace(venue)
	if len(venue) == 1 && isDigits(venue) {
		venue = "0" + venue
	}
	if _, ok := venues[venue]; ok {
		return venue, true
	}
	code, ok := venueCodes[venue]
	return code, ok
}
