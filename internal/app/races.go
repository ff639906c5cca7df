// Package service builds race and horse master documents from decoded
// JRA-VAN records.
package service

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jvrace/internal/adapters/catalog"
	"github.com/okian/jvrace/internal/adapters/jravan"
	"github.com/okian/jvrace/internal/adapters/mq/queue"
	"github.com/okian/jvrace/internal/adapters/mq/worker"
	"github.com/okian/jvrace/internal/adapters/repository"
	"github.com/okian/jvrace/internal/adapters/sink"
	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/internal/domain/raceid"
	"github.com/okian/jvrace/pkg/logger"
	"github.com/okian/jvrace/pkg/metrics"
)

// RaceMasterBuilder merges SE entries with SR summaries into race masters.
type RaceMasterBuilder struct {
	sources Sources
	out     sink.Writer
	opts    options
}

// NewRaceMasterBuilder creates a builder reading from src and writing to out.
func NewRaceMasterBuilder(src Sources, out sink.Writer, opts ...Option) *RaceMasterBuilder {
	return &RaceMasterBuilder{
		sources: src,
		out:     out,
		opts:    newOptions("races", opts),
	}
}

// ScanSE lazily decodes the SE records picked by sel. A non-nil error
// element is fatal and ends the sequence.
func (b *RaceMasterBuilder) ScanSE(ctx context.Context, sel Selection) iter.Seq2[model.SeEntry, error] {
	return scanWith(ctx, sel, b.sources.SE, b.scanOptions(sel, nil), jravan.ScanSE)
}

// ScanSR lazily decodes the SR records picked by sel.
func (b *RaceMasterBuilder) ScanSR(ctx context.Context, sel Selection) iter.Seq2[model.SrSummary, error] {
	return scanWith(ctx, sel, b.sources.SR, b.scanOptions(sel, nil), jravan.ScanSR)
}

func scanSelected[T any](sel Selection, src jravan.Source, scan func([]string) iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		files, err := sel.files(src)
		if err != nil {
			var zero T
			yield(zero, err)
			return
		}
		for v, err := range scan(files) {
			if !yield(v, err) {
				return
			}
		}
	}
}

func (b *RaceMasterBuilder) scanOptions(sel Selection, stats *jravan.Stats) []jravan.ScanOption {
	opts := append(sel.scanOptions(), jravan.WithLogger(b.opts.logger))
	if stats != nil {
		opts = append(opts, jravan.WithStats(stats))
	}
	return opts
}

// BuildIndex collects summaries by race id. A later summary for the same
// race replaces an earlier one.
func (b *RaceMasterBuilder) BuildIndex(ctx context.Context, seq iter.Seq2[model.SrSummary, error]) (*repository.SummaryIndex, error) {
	index := repository.NewSummaryIndex()
	for s, err := range seq {
		if err != nil {
			return nil, err
		}
		if _, err := index.Put(ctx, s); err != nil {
			return nil, err
		}
	}
	return index, nil
}

// GroupByRace collects entries by race id. Each group reads back ordered by
// umaban, then sequence.
func (b *RaceMasterBuilder) GroupByRace(ctx context.Context, seq iter.Seq2[model.SeEntry, error]) (*repository.RaceGroups, error) {
	groups := repository.NewRaceGroups()
	for e, err := range seq {
		if err != nil {
			return nil, err
		}
		if err := groups.Add(ctx, e); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// Merge builds the race master for raceID. It reports false when entries is
// empty. Without a summary in index the result is a pre-race document whose
// identity fields come from the race id.
func (b *RaceMasterBuilder) Merge(ctx context.Context, raceID string, entries []model.SeEntry, index repository.SummaryStore) (model.RaceMaster, bool) {
	return b.merge(ctx, raceID, entries, index, b.opts.clock().Format(model.CreatedAtLayout))
}

func (b *RaceMasterBuilder) merge(ctx context.Context, raceID string, entries []model.SeEntry, index repository.SummaryStore, createdAt string) (model.RaceMaster, bool) {
	if len(entries) == 0 {
		return model.RaceMaster{}, false
	}

	sorted := append([]model.SeEntry(nil), entries...)
	repository.SortEntries(sorted)
	out := make([]model.RaceEntry, len(sorted))
	for i := range sorted {
		out[i] = sorted[i].RaceEntry()
	}

	rm := model.RaceMaster{
		RaceID:     raceID,
		NumRunners: len(out),
		Entries:    out,
		Meta: model.Meta{
			DataVersion: model.DataVersion,
			Source:      model.SourceJRAVAN,
			CreatedAt:   createdAt,
		},
	}

	if s, err := index.Get(ctx, raceID); err == nil {
		rm.Date = s.Date
		rm.VenueCode = s.VenueCode
		rm.VenueName = s.VenueName
		rm.Kai = s.Kai
		rm.Nichi = s.Nichi
		rm.RaceNumber = s.RaceNumber
		rm.Distance = s.Distance
		rm.TrackType = s.TrackType
		rm.TrackCondition = s.BabaName
		rm.Pace = s.Pace()
		return rm, true
	}

	rm.Meta.PreRace = true
	if f, ok := raceid.Parse(raceID); ok {
		rm.Date = f.Date()
		rm.VenueCode = f.VenueCode
		rm.VenueName = f.VenueName()
		rm.Kai = f.Kai
		rm.Nichi = f.Nichi
		rm.RaceNumber = f.RaceNumber
	}
	return rm, true
}

// Run decodes the input picked by mode, merges every race and writes the
// documents. Scan failures abort the run before anything is written; write
// failures are counted in the report and the run continues.
func (b *RaceMasterBuilder) Run(ctx context.Context, mode Mode) (rep Report, err error) {
	start := time.Now()
	rep = Report{RunID: uuid.NewString(), Mode: mode.Name()}
	log := b.opts.logger
	defer func() {
		rep.Duration = time.Since(start)
		metrics.RecordRunDuration(rep.Mode, float64(rep.Duration.Milliseconds()))
	}()

	if b.out == nil {
		return rep, ErrNilSink
	}
	sel, err := mode.selection()
	if err != nil {
		return rep, err
	}

	log.Info(ctx, "race build started",
		logger.String("run_id", rep.RunID),
		logger.String("mode", rep.Mode),
		logger.String("date", sel.Date),
		logger.Int("workers", b.opts.workers),
	)

	stats := jravan.NewStats()
	groups, index, err := b.collect(ctx, sel, stats)
	rep.SE = stats.Snapshot(jravan.KindSE)
	rep.SR = stats.Snapshot(jravan.KindSR)
	if err != nil {
		return rep, err
	}

	if err := b.emit(ctx, groups, index, &rep); err != nil {
		return rep, err
	}

	log.Info(ctx, "race build finished",
		logger.String("run_id", rep.RunID),
		logger.Int64("se_decoded", rep.SE.Decoded),
		logger.Int64("se_skipped", rep.SE.SkippedTotal()),
		logger.Int64("se_filtered", rep.SE.Filtered),
		logger.Int64("sr_decoded", rep.SR.Decoded),
		logger.Int64("sr_skipped", rep.SR.SkippedTotal()),
		logger.Int("merged", rep.RacesMerged),
		logger.Int("pre_race", rep.RacesPreRace),
		logger.Int("written", rep.RacesWritten),
		logger.Int("write_errors", rep.WriteErrors),
	)
	return rep, nil
}

// collect decodes every selected file. One worker streams the files in
// order; more workers decode files in parallel into the sharded stores.
func (b *RaceMasterBuilder) collect(ctx context.Context, sel Selection, stats *jravan.Stats) (repository.GroupStore, repository.SummaryStore, error) {
	if b.opts.workers <= 1 {
		index, err := b.BuildIndex(ctx, scanWith(ctx, sel, b.sources.SR, b.scanOptions(sel, stats), jravan.ScanSR))
		if err != nil {
			return nil, nil, err
		}
		groups, err := b.GroupByRace(ctx, scanWith(ctx, sel, b.sources.SE, b.scanOptions(sel, stats), jravan.ScanSE))
		if err != nil {
			return nil, nil, err
		}
		return groups, index, nil
	}

	srFiles, err := sel.files(b.sources.SR)
	if err != nil {
		return nil, nil, err
	}
	seFiles, err := sel.files(b.sources.SE)
	if err != nil {
		return nil, nil, err
	}

	pool := worker.NewPool(b.opts.workers, worker.WithLogger(b.opts.logger))
	opts := b.scanOptions(sel, stats)

	summaries := repository.NewSummaryIndex()
	err = pool.Run(ctx, jobs(srFiles), func(ctx context.Context, j queue.Job) error {
		for s, err := range jravan.ScanSRFile(ctx, j.Path, j.Index, opts...) {
			if err != nil {
				return err
			}
			if _, err := summaries.Put(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan sr: %w", err)
	}

	groups := repository.NewRaceGroups()
	err = pool.Run(ctx, jobs(seFiles), func(ctx context.Context, j queue.Job) error {
		for e, err := range jravan.ScanSEFile(ctx, j.Path, j.Index, opts...) {
			if err != nil {
				return err
			}
			if err := groups.Add(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan se: %w", err)
	}

	return groups, summaries, nil
}

func scanWith[T any](
	ctx context.Context,
	sel Selection,
	src jravan.Source,
	opts []jravan.ScanOption,
	scan func(context.Context, []string, ...jravan.ScanOption) iter.Seq2[T, error],
) iter.Seq2[T, error] {
	return scanSelected(sel, src, func(files []string) iter.Seq2[T, error] {
		return scan(ctx, files, opts...)
	})
}

// emit merges and writes every group in race id order.
func (b *RaceMasterBuilder) emit(ctx context.Context, groups repository.GroupStore, index repository.SummaryStore, rep *Report) error {
	log := b.opts.logger
	cat := b.opts.catalog
	started := b.opts.clock()
	createdAt := started.Format(model.CreatedAtLayout)

	if err := cat.BeginRun(ctx, catalog.Run{ID: rep.RunID, Mode: rep.Mode, StartedAt: started}); err != nil {
		log.Warn(ctx, "catalog unavailable", logger.Error(err))
		cat = catalog.Noop{}
	}

	metrics.UpdateRaceGroups(groups.Count(ctx))
	metrics.UpdateSummaryIndexSize(index.Count(ctx))

	for _, id := range groups.RaceIDs(ctx) {
		if err := ctx.Err(); err != nil {
			return err
		}

		entries, err := groups.Entries(ctx, id)
		if err != nil {
			return fmt.Errorf("read group %s: %w", id, err)
		}
		rm, ok := b.merge(ctx, id, entries, index, createdAt)
		if !ok {
			rep.RacesDropped++
			metrics.RecordRaceDropped()
			continue
		}
		rep.RacesMerged++
		state := metrics.StateFull
		if rm.Meta.PreRace {
			rep.RacesPreRace++
			state = metrics.StatePreRace
		}
		metrics.RecordRaceMerged(state)

		path, err := b.out.WriteRace(ctx, rm)
		if err == nil {
			err = cat.RecordRace(ctx, rep.RunID, rm, path)
		}
		if err != nil {
			rep.WriteErrors++
			metrics.RecordWriteError()
			if rep.WriteErrors <= maxLoggedWriteErrors {
				log.Error(ctx, "write race failed", logger.String("race_id", id), logger.Error(err))
			}
			continue
		}
		rep.RacesWritten++
		metrics.RecordRaceWritten()
	}

	if err := cat.FinishRun(ctx, rep.RunID, b.opts.clock(), rep.RacesWritten, rep.WriteErrors); err != nil {
		log.Warn(ctx, "catalog finish failed", logger.Error(err))
	}
	return nil
}

func jobs(files []string) []queue.Job {
	out := make([]queue.Job, len(files))
	for i, f := range files {
		out[i] = queue.Job{Index: i, Path: f}
	}
	return out
}
