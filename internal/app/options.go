package service

import (
	"time"

	"github.com/okian/jvrace/internal/adapters/catalog"
	"github.com/okian/jvrace/pkg/logger"
)

// Option applies a configuration option to a builder.
type Option func(*options)

type options struct {
	logger  logger.Logger
	clock   func() time.Time
	workers int
	catalog catalog.Catalog
	recent  int
}

func newOptions(component string, opts []Option) options {
	o := options{
		clock:   time.Now,
		workers: 1,
		catalog: catalog.Noop{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named(component)
	}
	return o
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock used for created_at and run timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithWorkers sets the number of files decoded in parallel. 1 scans
// sequentially.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithCatalog records written races in c.
func WithCatalog(c catalog.Catalog) Option {
	return func(o *options) {
		if c != nil {
			o.catalog = c
		}
	}
}

// WithRecentFiles limits horse master scans to the n newest files.
// 0 scans every file.
func WithRecentFiles(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.recent = n
		}
	}
}
