package jravan

import (
	"strconv"
)

// field is a fixed-width slice of a record.
type field struct {
	off int
	n   int
}

func (f field) bytes(rec []byte) []byte {
	return rec[f.off : f.off+f.n]
}

// text decodes the field as Shift-JIS text.
func (f field) text(rec []byte) string {
	return DecodeText(f.bytes(rec))
}

// ascii returns the raw bytes with surrounding spaces trimmed. Used for code
// fields that are plain ASCII on the wire.
func (f field) ascii(rec []byte) string {
	b := f.bytes(rec)
	start, end := 0, len(b)
	for start < end && (b[start] == ' ' || b[start] == 0) {
		start++
	}
	for end > start && (b[end-1] == ' ' || b[end-1] == 0) {
		end--
	}
	return string(b[start:end])
}

// digits returns the field when every byte is an ASCII digit.
func (f field) digits(rec []byte) (string, bool) {
	s := string(f.bytes(rec))
	if !isDigits(s) {
		return "", false
	}
	return s, true
}

// num parses the trimmed field, returning 0 when it is blank or malformed.
func (f field) num(rec []byte) int {
	v, err := strconv.Atoi(f.text(rec))
	if err != nil {
		return 0
	}
	return v
}

// tenths parses a field stored scaled by 10. Non-positive or malformed
// values yield 0.
func (f field) tenths(rec []byte) float64 {
	v := f.num(rec)
	if v <= 0 {
		return 0
	}
	return float64(v) / 10
}

// paceTime parses a 3-digit SST sectional (tens of seconds, units, tenths).
func (f field) paceTime(rec []byte) (float64, bool) {
	s, ok := f.digits(rec)
	if !ok {
		return 0, false
	}
	return float64(s[0]-'0')*10 + float64(s[1]-'0') + float64(s[2]-'0')/10, true
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

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
