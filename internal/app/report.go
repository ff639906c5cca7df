package service

import (
	"time"

	"github.com/okian/jvrace/internal/adapters/jravan"
)

// maxLoggedWriteErrors caps the write failures logged individually per run.
const maxLoggedWriteErrors = 5

// Report summarises a race build.
type Report struct {
	RunID        string        `json:"run_id"`
	Mode         string        `json:"mode"`
	SE           jravan.Counts `json:"se"`
	SR           jravan.Counts `json:"sr"`
	RacesMerged  int           `json:"races_merged"`
	RacesPreRace int           `json:"races_pre_race"`
	RacesDropped int           `json:"races_dropped"`
	RacesWritten int           `json:"races_written"`
	WriteErrors  int           `json:"write_errors"`
	Duration     time.Duration `json:"duration"`
}

// HorseReport summarises a horse master build.
type HorseReport struct {
	RunID       string        `json:"run_id"`
	UM          jravan.Counts `json:"um"`
	Horses      int           `json:"horses"`
	Duplicates  int           `json:"duplicates"`
	Names       int           `json:"names"`
	Written     int           `json:"written"`
	WriteErrors int           `json:"write_errors"`
	Duration    time.Duration `json:"duration"`
}
