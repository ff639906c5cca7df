package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jvrace/internal/adapters/jravan"
	"github.com/okian/jvrace/internal/adapters/sink"
	"github.com/okian/jvrace/internal/domain/dedupe"
	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/pkg/logger"
	"github.com/okian/jvrace/pkg/metrics"
)

// HorseMasterBuilder writes one master document per registered horse plus
// the name to ketto_num index.
type HorseMasterBuilder struct {
	source jravan.Source
	out    sink.Writer
	opts   options
}

// NewHorseMasterBuilder creates a builder reading UM files from src.
func NewHorseMasterBuilder(src jravan.Source, out sink.Writer, opts ...Option) *HorseMasterBuilder {
	return &HorseMasterBuilder{
		source: src,
		out:    out,
		opts:   newOptions("horses", opts),
	}
}

// Run scans the UM files newest first. The first record seen for a horse
// wins, so the latest registration data is kept.
func (b *HorseMasterBuilder) Run(ctx context.Context) (rep HorseReport, err error) {
	start := time.Now()
	rep = HorseReport{RunID: uuid.NewString()}
	log := b.opts.logger
	defer func() {
		rep.Duration = time.Since(start)
		metrics.RecordRunDuration("horses", float64(rep.Duration.Milliseconds()))
	}()

	if b.out == nil {
		return rep, ErrNilSink
	}
	files, err := b.source.Newest(b.opts.recent)
	if err != nil {
		return rep, err
	}

	log.Info(ctx, "horse build started",
		logger.String("run_id", rep.RunID),
		logger.Int("files", len(files)),
	)

	stats := jravan.NewStats()
	seen := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(1 << 14))
	var horses []model.HorseMaster
	for h, err := range jravan.ScanUM(ctx, files, jravan.WithStats(stats), jravan.WithLogger(log)) {
		if err != nil {
			rep.UM = stats.Snapshot(jravan.KindUM)
			return rep, err
		}
		if seen.SeenAndRecord(ctx, h.KettoNum) {
			rep.Duplicates++
			continue
		}
		horses = append(horses, h)
	}
	rep.UM = stats.Snapshot(jravan.KindUM)
	rep.Horses = int(seen.Size())
	metrics.UpdateHorses(rep.Horses)

	names := dedupe.NewInMemoryIndex(dedupe.WithCapacity(len(horses)))
	for i := range horses {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		h := horses[i]
		if h.Name != "" {
			names.Claim(ctx, h.Name, h.KettoNum)
		}
		if _, err := b.out.WriteHorse(ctx, h); err != nil {
			b.writeFailed(ctx, &rep, h.KettoNum, err)
			continue
		}
		rep.Written++
		metrics.RecordHorseWritten()
	}

	index := names.Snapshot()
	rep.Names = len(index)
	if _, err := b.out.WriteNameIndex(ctx, index); err != nil {
		b.writeFailed(ctx, &rep, "horse_name_index", err)
	}

	log.Info(ctx, "horse build finished",
		logger.String("run_id", rep.RunID),
		logger.Int64("um_decoded", rep.UM.Decoded),
		logger.Int64("um_skipped", rep.UM.SkippedTotal()),
		logger.Int("horses", rep.Horses),
		logger.Int("duplicates", rep.Duplicates),
		logger.Int("names", rep.Names),
		logger.Int("written", rep.Written),
		logger.Int("write_errors", rep.WriteErrors),
	)
	return rep, nil
}

func (b *HorseMasterBuilder) writeFailed(ctx context.Context, rep *HorseReport, key string, err error) {
	rep.WriteErrors++
	metrics.RecordWriteError()
	if rep.WriteErrors <= maxLoggedWriteErrors {
		b.opts.logger.Error(ctx, "write horse failed", logger.String("key", key), logger.Error(err))
	}
}
