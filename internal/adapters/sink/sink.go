// Package sink writes race and horse master documents as JSON files.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/internal/domain/raceid"
	"github.com/okian/jvrace/pkg/logger"
)

// Output file layout.
const (
	horsesDir     = "horses"
	nameIndexFile = "horse_name_index.json"
	racePrefix    = "race_"
	jsonSuffix    = ".json"
)

// Writer persists output documents. Each method returns the target path.
type Writer interface {
	WriteRace(ctx context.Context, rm model.RaceMaster) (string, error)
	WriteHorse(ctx context.Context, h model.HorseMaster) (string, error)
	WriteNameIndex(ctx context.Context, index map[string]string) (string, error)
}

// FileSink writes documents under a races root and a masters root.
type FileSink struct {
	racesDir   string
	mastersDir string
	dryRun     bool
	logger     logger.Logger
}

var _ Writer = (*FileSink)(nil)

// NewFileSink creates a sink rooted at racesDir and mastersDir.
func NewFileSink(racesDir, mastersDir string, opts ...Option) *FileSink {
	s := &FileSink{
		racesDir:   racesDir,
		mastersDir: mastersDir,
		logger:     logger.Get().Named("sink"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RacePath returns {racesDir}/YYYY/MM/DD/race_{id}.json.
func RacePath(racesDir, id string) (string, error) {
	datePath := raceid.DatePath(id)
	if datePath == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidRaceID, id)
	}
	return filepath.Join(racesDir, filepath.FromSlash(datePath), racePrefix+id+jsonSuffix), nil
}

// Encode renders v as 2-space indented JSON with non-ASCII text left
// unescaped and a trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteRace writes one race master, replacing any previous file.
func (s *FileSink) WriteRace(ctx context.Context, rm model.RaceMaster) (string, error) {
	path, err := RacePath(s.racesDir, rm.RaceID)
	if err != nil {
		return "", err
	}
	return path, s.write(ctx, path, rm)
}

// WriteHorse writes {mastersDir}/horses/{ketto}.json.
func (s *FileSink) WriteHorse(ctx context.Context, h model.HorseMaster) (string, error) {
	if strings.TrimSpace(h.KettoNum) == "" {
		return "", ErrMissingKey
	}
	path := filepath.Join(s.mastersDir, horsesDir, h.KettoNum+jsonSuffix)
	return path, s.write(ctx, path, h)
}

// WriteNameIndex writes the name to registration number index.
func (s *FileSink) WriteNameIndex(ctx context.Context, index map[string]string) (string, error) {
	if index == nil {
		index = map[string]string{}
	}
	path := filepath.Join(s.mastersDir, nameIndexFile)
	return path, s.write(ctx, path, index)
}

func (s *FileSink) write(ctx context.Context, path string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	if s.dryRun {
		s.logger.Debug(ctx, "dry run, not writing", logger.String("path", path))
		return nil
	}
	return writeFileAtomic(filepath.Dir(path), filepath.Base(path), data)
}
