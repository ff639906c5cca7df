package jravan

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// maxReplacementRatio is the share of U+FFFD runes above which a strict
// decode is discarded in favour of the permissive pass.
const maxReplacementRatio = 0.5

const (
	ideographicSpace = '　'
	replacementChar  = utf8.RuneError
)

// DecodeText decodes a Shift-JIS field into trimmed UTF-8. It never fails:
// invalid sequences are dropped, full-width space padding is removed and
// surrounding whitespace and NUL padding are trimmed.
func DecodeText(raw []byte) string {
	return clean(decodeShiftJIS(raw))
}

// decodeUMText is DecodeText that also drops the '@' padding used in horse
// master records.
func decodeUMText(raw []byte) string {
	return strings.ReplaceAll(DecodeText(raw), "@", "")
}

func decodeShiftJIS(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return permissiveDecode(raw)
	}
	s := string(out)
	bad := strings.Count(s, string(replacementChar))
	if bad == 0 {
		return s
	}
	if float64(bad) > float64(utf8.RuneCountInString(s))*maxReplacementRatio {
		return permissiveDecode(raw)
	}
	return s
}

// permissiveDecode keeps only byte sequences that form valid Shift-JIS
// characters and decodes what is left.
func permissiveDecode(raw []byte) string {
	kept := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		switch {
		case b < 0x80, isHalfWidthKana(b):
			kept = append(kept, b)
		case isLeadByte(b) && i+1 < len(raw) && isTrailByte(raw[i+1]):
			kept = append(kept, b, raw[i+1])
			i++
		}
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(kept)
	if err != nil {
		return ""
	}
	return string(out)
}

func isLeadByte(b byte) bool {
	return (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xFC)
}

func isTrailByte(b byte) bool {
	return (b >= 0x40 && b <= 0x7E) || (b >= 0x80 && b <= 0xFC)
}

func isHalfWidthKana(b byte) bool {
	return b >= 0xA1 && b <= 0xDF
}

func clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == ideographicSpace || r == replacementChar {
			return -1
		}
		return r
	}, s)
	return strings.TrimFunc(s, func(r rune) bool {
		return r == 0 || unicode.IsSpace(r)
	})
}
