// Package catalog records which race documents a run produced in a small
// SQLite index, so downstream jobs can query races without walking the
// output tree.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/okian/jvrace/internal/domain/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("catalog: not found")

// Run identifies one builder run.
type Run struct {
	ID        string
	Mode      string
	StartedAt time.Time
}

// RunSummary is the stored outcome of a run.
type RunSummary struct {
	Run
	FinishedAt   time.Time
	RacesWritten int
	WriteErrors  int
}

// RaceRow is the indexed view of one race document.
type RaceRow struct {
	RaceID     string
	Date       string
	VenueCode  string
	VenueName  string
	RaceNumber int
	Distance   int
	TrackType  string
	NumRunners int
	PreRace    bool
	Path       string
	RunID      string
}

// Catalog indexes written race documents.
type Catalog interface {
	BeginRun(ctx context.Context, run Run) error
	RecordRace(ctx context.Context, runID string, rm model.RaceMaster, path string) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, written, writeErrors int) error
	Close() error
}

// Noop discards everything. It is used when no index database is configured.
type Noop struct{}

var _ Catalog = Noop{}

// BeginRun implements Catalog.
func (Noop) BeginRun(context.Context, Run) error { return nil }

// RecordRace implements Catalog.
func (Noop) RecordRace(context.Context, string, model.RaceMaster, string) error { return nil }

// FinishRun implements Catalog.
func (Noop) FinishRun(context.Context, string, time.Time, int, int) error { return nil }

// Close implements Catalog.
func (Noop) Close() error { return nil }
