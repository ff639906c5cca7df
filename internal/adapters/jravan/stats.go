package jravan

import (
	"sync"

	"github.com/okian/jvrace/pkg/metrics"
)

// Kind names a record family.
type Kind string

// Record kinds.
const (
	KindSE Kind = "se"
	KindSR Kind = "sr"
	KindUM Kind = "um"
)

// RecordLen returns the fixed record length of k.
func (k Kind) RecordLen() int {
	switch k {
	case KindSE:
		return SERecordLen
	case KindSR:
		return SRRecordLen
	case KindUM:
		return UMRecordLen
	default:
		return 0
	}
}

// Counts is a point-in-time copy of one kind's scan counters.
type Counts struct {
	Files    int64            `json:"files"`
	Decoded  int64            `json:"decoded"`
	Filtered int64            `json:"filtered"`
	Skipped  map[string]int64 `json:"skipped"`
}

// SkippedTotal sums skips across reasons.
func (c Counts) SkippedTotal() int64 {
	var n int64
	for _, v := range c.Skipped {
		n += v
	}
	return n
}

// Stats accumulates scan counters. It is safe for concurrent use and mirrors
// every update into the process metrics.
type Stats struct {
	mu    sync.Mutex
	kinds map[Kind]*Counts
}

// NewStats returns empty counters.
func NewStats() *Stats {
	return &Stats{kinds: make(map[Kind]*Counts)}
}

func (s *Stats) counts(k Kind) *Counts {
	c, ok := s.kinds[k]
	if !ok {
		c = &Counts{Skipped: make(map[string]int64)}
		s.kinds[k] = c
	}
	return c
}

func (s *Stats) addDecoded(k Kind) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.counts(k).Decoded++
	s.mu.Unlock()
	metrics.RecordDecoded(string(k))
}

func (s *Stats) addSkipped(k Kind, reason string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.counts(k).Skipped[reason]++
	s.mu.Unlock()
	metrics.RecordSkipped(string(k), reason)
}

func (s *Stats) addFiltered(k Kind) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.counts(k).Filtered++
	s.mu.Unlock()
	metrics.RecordFiltered(string(k))
}

func (s *Stats) addFile(k Kind, durationMs float64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.counts(k).Files++
	s.mu.Unlock()
	metrics.RecordFileScanned(string(k), durationMs)
}

// Snapshot copies the counters of kind k.
func (s *Stats) Snapshot(k Kind) Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.counts(k)
	out := Counts{
		Files:    c.Files,
		Decoded:  c.Decoded,
		Filtered: c.Filtered,
		Skipped:  make(map[string]int64, len(c.Skipped)),
	}
	for r, n := range c.Skipped {
		out.Skipped[r] = n
	}
	return out
}
