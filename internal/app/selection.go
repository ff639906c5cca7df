package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/jvrace/internal/adapters/jravan"
)

const dateLayout = "2006-01-02"

// Sources locates the input files of every record kind.
type Sources struct {
	SE jravan.Source
	SR jravan.Source
	UM jravan.Source
}

// NewSources uses the default file prefixes. SR files normally live next to
// the SE files.
func NewSources(seDir, srDir, umDir string) Sources {
	return Sources{
		SE: jravan.Source{Root: seDir, Prefix: jravan.PrefixSE, Kind: jravan.KindSE},
		SR: jravan.Source{Root: srDir, Prefix: jravan.PrefixSR, Kind: jravan.KindSR},
		UM: jravan.Source{Root: umDir, Prefix: jravan.PrefixUM, Kind: jravan.KindUM},
	}
}

// Selection picks the files and records a scan reads. A non-empty Date
// restricts the scan to that date's year directory and to records carrying
// that date; otherwise every file of Years is read.
type Selection struct {
	Years []int
	Date  string // YYYY-MM-DD
}

func (s Selection) files(src jravan.Source) ([]string, error) {
	if s.Date == "" {
		return src.Files(s.Years)
	}
	d, err := parseDate(s.Date)
	if err != nil {
		return nil, err
	}
	return src.Files([]int{d.Year()})
}

func (s Selection) scanOptions() []jravan.ScanOption {
	if s.Date == "" {
		return nil
	}
	return []jravan.ScanOption{jravan.WithDate(s.Date)}
}

func parseDate(date string) (time.Time, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return d, nil
}

// Mode selects how Run picks its input.
type Mode interface {
	Name() string
	selection() (Selection, error)
}

// ModeFull merges every race of the given years.
type ModeFull struct {
	Years []int
}

// Name implements Mode.
func (ModeFull) Name() string { return "full" }

func (m ModeFull) selection() (Selection, error) {
	if len(m.Years) == 0 {
		return Selection{}, ErrNoYears
	}
	return Selection{Years: m.Years}, nil
}

// ModeIncremental merges the races of one date only.
type ModeIncremental struct {
	Date string // YYYY-MM-DD
}

// Name implements Mode.
func (ModeIncremental) Name() string { return "incremental" }

func (m ModeIncremental) selection() (Selection, error) {
	if _, err := parseDate(m.Date); err != nil {
		return Selection{}, err
	}
	return Selection{Date: m.Date}, nil
}

// ParseYears expands "2024", "2020-2026" or "2020,2022" into years.
func ParseYears(years string) ([]int, error) {
	var out []int
	for _, part := range splitComma(years) {
		lo, hi, isRange := cutRange(part)
		from, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("parse year %q: %w", part, err)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("parse year %q: %w", part, err)
			}
		}
		if to < from {
			return nil, fmt.Errorf("parse year %q: end before start", part)
		}
		for y := from; y <= to; y++ {
			out = append(out, y)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoYears
	}
	return out, nil
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cutRange(s string) (lo, hi string, ok bool) {
	lo, hi, ok = strings.Cut(s, "-")
	return strings.TrimSpace(lo), strings.TrimSpace(hi), ok
}
