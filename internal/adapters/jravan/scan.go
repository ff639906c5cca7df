package jravan

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/pkg/logger"
)

// Raw date location shared by SE and SR records.
const (
	rawDateOffset = 11
	rawDateLen    = 8
)

const defaultBufferSize = 64 * 1024

// ScanOption configures a file scan.
type ScanOption func(*scanConfig)

type scanConfig struct {
	date    []byte
	stats   *Stats
	bufSize int
	logger  logger.Logger
}

// WithDate keeps only records whose raw date bytes equal date (YYYY-MM-DD or
// YYYYMMDD). The comparison happens before decoding and does not apply to
// horse master records.
func WithDate(date string) ScanOption {
	return func(c *scanConfig) {
		if d := strings.ReplaceAll(date, "-", ""); len(d) == rawDateLen {
			c.date = []byte(d)
		}
	}
}

// WithStats collects per-kind counters into s.
func WithStats(s *Stats) ScanOption {
	return func(c *scanConfig) {
		if s != nil {
			c.stats = s
		}
	}
}

// WithBufferSize sets the read buffer size.
func WithBufferSize(n int) ScanOption {
	return func(c *scanConfig) {
		if n > 0 {
			c.bufSize = n
		}
	}
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l logger.Logger) ScanOption {
	return func(c *scanConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newScanConfig(opts []ScanOption) scanConfig {
	c := scanConfig{bufSize: defaultBufferSize}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("jravan")
	}
	return c
}

// ScanSEFile lazily decodes the SE records of one file. fileIdx orders the
// file among its siblings and seeds each entry's sequence.
func ScanSEFile(ctx context.Context, path string, fileIdx int, opts ...ScanOption) iter.Seq2[model.SeEntry, error] {
	return scanFile(ctx, KindSE, path, fileIdx, DecodeSE, func(e *model.SeEntry, seq uint64) { e.Seq = seq }, newScanConfig(opts))
}

// ScanSRFile lazily decodes the SR records of one file.
func ScanSRFile(ctx context.Context, path string, fileIdx int, opts ...ScanOption) iter.Seq2[model.SrSummary, error] {
	return scanFile(ctx, KindSR, path, fileIdx, DecodeSR, func(s *model.SrSummary, seq uint64) { s.Seq = seq }, newScanConfig(opts))
}

// ScanUMFile lazily decodes the UM records of one file.
func ScanUMFile(ctx context.Context, path string, fileIdx int, opts ...ScanOption) iter.Seq2[model.HorseMaster, error] {
	return scanFile(ctx, KindUM, path, fileIdx, DecodeUM, nil, newScanConfig(opts))
}

// ScanSE chains ScanSEFile over files in order.
func ScanSE(ctx context.Context, files []string, opts ...ScanOption) iter.Seq2[model.SeEntry, error] {
	return chain(files, func(path string, i int) iter.Seq2[model.SeEntry, error] {
		return ScanSEFile(ctx, path, i, opts...)
	})
}

// ScanSR chains ScanSRFile over files in order.
func ScanSR(ctx context.Context, files []string, opts ...ScanOption) iter.Seq2[model.SrSummary, error] {
	return chain(files, func(path string, i int) iter.Seq2[model.SrSummary, error] {
		return ScanSRFile(ctx, path, i, opts...)
	})
}

// ScanUM chains ScanUMFile over files in order.
func ScanUM(ctx context.Context, files []string, opts ...ScanOption) iter.Seq2[model.HorseMaster, error] {
	return chain(files, func(path string, i int) iter.Seq2[model.HorseMaster, error] {
		return ScanUMFile(ctx, path, i, opts...)
	})
}

func chain[T any](files []string, one func(path string, i int) iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for i, path := range files {
			for v, err := range one(path, i) {
				if !yield(v, err) || err != nil {
					return
				}
			}
		}
	}
}

// scanFile reads path one fixed-length record at a time. Skipped records are
// counted, never yielded. A yielded error is fatal and ends the sequence.
func scanFile[T any](
	ctx context.Context,
	kind Kind,
	path string,
	fileIdx int,
	decode func([]byte, int) (T, error),
	setSeq func(*T, uint64),
	cfg scanConfig,
) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		recLen := kind.RecordLen()
		filterDate := cfg.date != nil && kind != KindUM

		f, err := os.Open(path)
		if err != nil {
			yield(zero, fmt.Errorf("open %s: %w", path, err))
			return
		}
		defer f.Close() //nolint:errcheck // read-only file

		start := time.Now()
		records := 0
		defer func() {
			cfg.stats.addFile(kind, float64(time.Since(start).Milliseconds()))
			cfg.logger.Debug(ctx, "file scanned",
				logger.String("path", path),
				logger.String("kind", string(kind)),
				logger.Int("records", records),
			)
		}()

		r := bufio.NewReaderSize(f, cfg.bufSize)
		buf := make([]byte, recLen)
		for recIdx := 0; ; recIdx++ {
			if err := ctx.Err(); err != nil {
				yield(zero, fmt.Errorf("scan %s: %w", path, err))
				return
			}

			n, err := io.ReadFull(r, buf)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				yield(zero, fmt.Errorf("read %s: %w", path, err))
				return
			}
			records++
			rec := buf[:n]

			switch {
			case filterDate && n >= rawDateOffset+rawDateLen &&
				!bytes.Equal(rec[rawDateOffset:rawDateOffset+rawDateLen], cfg.date):
				cfg.stats.addFiltered(kind)
			default:
				v, derr := decode(rec, 0)
				if derr != nil {
					if !IsSkip(derr) {
						yield(zero, fmt.Errorf("decode %s record %d: %w", path, recIdx, derr))
						return
					}
					cfg.stats.addSkipped(kind, Reason(derr))
					break
				}
				if setSeq != nil {
					setSeq(&v, model.Sequence(fileIdx, recIdx))
				}
				cfg.stats.addDecoded(kind)
				if !yield(v, nil) {
					return
				}
			}

			if n < recLen {
				return
			}
		}
	}
}
