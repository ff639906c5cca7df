package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // driver

	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/pkg/logger"
)

// SQLiteCatalog persists the race index to a SQLite database.
type SQLiteCatalog struct {
	db     *sql.DB
	mu     sync.Mutex
	logger logger.Logger
}

var _ Catalog = (*SQLiteCatalog)(nil)

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteCatalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close() //nolint:errcheck,gosec // already failing
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteCatalog{db: db, logger: logger.Get().Named("catalog")}
	if err := c.migrate(ctx); err != nil {
		db.Close() //nolint:errcheck,gosec // already failing
		return nil, fmt.Errorf("migrate: %w", err)
	}

	c.logger.Info(ctx, "sqlite catalog opened", logger.String("path", path))
	return c, nil
}

func (c *SQLiteCatalog) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			mode          TEXT NOT NULL,
			started_at    TEXT NOT NULL,
			finished_at   TEXT,
			races_written INTEGER NOT NULL DEFAULT 0,
			write_errors  INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS races (
			race_id     TEXT PRIMARY KEY,
			date        TEXT NOT NULL,
			venue_code  TEXT NOT NULL,
			venue_name  TEXT NOT NULL,
			race_number INTEGER NOT NULL,
			distance    INTEGER NOT NULL,
			track_type  TEXT NOT NULL,
			num_runners INTEGER NOT NULL,
			pre_race    INTEGER NOT NULL,
			path        TEXT NOT NULL,
			run_id      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_races_date ON races(date)`,
	}

	for _, s := range stmts {
		if _, err := c.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// BeginRun implements Catalog.
func (c *SQLiteCatalog) BeginRun(ctx context.Context, run Run) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx, `INSERT INTO runs (id, mode, started_at) VALUES (?,?,?)`,
		run.ID, run.Mode, run.StartedAt.Format(model.CreatedAtLayout),
	)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", run.ID, err)
	}
	return nil
}

// RecordRace implements Catalog. A race already indexed is replaced.
func (c *SQLiteCatalog) RecordRace(ctx context.Context, runID string, rm model.RaceMaster, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx, `INSERT INTO races
		(race_id, date, venue_code, venue_name, race_number, distance,
		 track_type, num_runners, pre_race, path, run_id)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(race_id) DO UPDATE SET
			date = excluded.date,
			venue_code = excluded.venue_code,
			venue_name = excluded.venue_name,
			race_number = excluded.race_number,
			distance = excluded.distance,
			track_type = excluded.track_type,
			num_runners = excluded.num_runners,
			pre_race = excluded.pre_race,
			path = excluded.path,
			run_id = excluded.run_id`,
		rm.RaceID, rm.Date, rm.VenueCode, rm.VenueName, rm.RaceNumber, rm.Distance,
		string(rm.TrackType), rm.NumRunners, rm.Meta.PreRace, path, runID,
	)
	if err != nil {
		return fmt.Errorf("record race %s: %w", rm.RaceID, err)
	}
	return nil
}

// FinishRun implements Catalog.
func (c *SQLiteCatalog) FinishRun(ctx context.Context, runID string, finishedAt time.Time, written, writeErrors int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.ExecContext(ctx, `UPDATE runs
		SET finished_at = ?, races_written = ?, write_errors = ?
		WHERE id = ?`,
		finishedAt.Format(model.CreatedAtLayout), written, writeErrors, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// Race returns the indexed row for raceID.
func (c *SQLiteCatalog) Race(ctx context.Context, raceID string) (RaceRow, error) {
	var r RaceRow
	err := c.db.QueryRowContext(ctx, `SELECT race_id, date, venue_code, venue_name,
		race_number, distance, track_type, num_runners, pre_race, path, run_id
		FROM races WHERE race_id = ?`, raceID).Scan(
		&r.RaceID, &r.Date, &r.VenueCode, &r.VenueName, &r.RaceNumber, &r.Distance,
		&r.TrackType, &r.NumRunners, &r.PreRace, &r.Path, &r.RunID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RaceRow{}, ErrNotFound
	}
	if err != nil {
		return RaceRow{}, fmt.Errorf("query race %s: %w", raceID, err)
	}
	return r, nil
}

// RacesOn returns the race ids indexed for date (YYYY-MM-DD) in order.
func (c *SQLiteCatalog) RacesOn(ctx context.Context, date string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT race_id FROM races WHERE date = ? ORDER BY race_id`, date)
	if err != nil {
		return nil, fmt.Errorf("query races on %s: %w", date, err)
	}
	defer rows.Close() //nolint:errcheck // read-only

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan race id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Run returns the stored summary of runID.
func (c *SQLiteCatalog) Run(ctx context.Context, runID string) (RunSummary, error) {
	var (
		s        RunSummary
		started  string
		finished sql.NullString
	)
	err := c.db.QueryRowContext(ctx, `SELECT id, mode, started_at, finished_at, races_written, write_errors
		FROM runs WHERE id = ?`, runID).Scan(
		&s.ID, &s.Mode, &started, &finished, &s.RacesWritten, &s.WriteErrors,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, ErrNotFound
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("query run %s: %w", runID, err)
	}
	if s.StartedAt, err = time.Parse(model.CreatedAtLayout, started); err != nil {
		return RunSummary{}, fmt.Errorf("parse started_at %q: %w", started, err)
	}
	if finished.Valid {
		if s.FinishedAt, err = time.Parse(model.CreatedAtLayout, finished.String); err != nil {
			return RunSummary{}, fmt.Errorf("parse finished_at %q: %w", finished.String, err)
		}
	}
	return s, nil
}

// Close closes the database.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
