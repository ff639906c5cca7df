// Package repository holds the shared mutable state of a build: decoded SE
// entries grouped by race and the SR summary index.
package repository

import (
	"context"

	"github.com/okian/jvrace/internal/domain/model"
)

// GroupStore accumulates SE entries per race id.
type GroupStore interface {
	// Add appends an entry to its race group.
	Add(ctx context.Context, e model.SeEntry) error

	// Entries returns a race's entries ordered by umaban, then sequence.
	// Returns ErrNotFound if no entry was added for raceID.
	Entries(ctx context.Context, raceID string) ([]model.SeEntry, error)

	// RaceIDs returns every race id in ascending order.
	RaceIDs(ctx context.Context) []string

	// Count returns the number of race groups.
	Count(ctx context.Context) int
}

// SummaryStore indexes SR summaries by race id.
type SummaryStore interface {
	// Put stores s unless a summary with a higher sequence is already
	// indexed for the same race. Returns true if s was stored.
	Put(ctx context.Context, s model.SrSummary) (bool, error)

	// Get returns the indexed summary. Returns ErrNotFound when absent.
	Get(ctx context.Context, raceID string) (model.SrSummary, error)

	// Count returns the number of indexed races.
	Count(ctx context.Context) int
}
