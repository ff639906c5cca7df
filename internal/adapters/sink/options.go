package sink

import "github.com/okian/jvrace/pkg/logger"

// Option configures a FileSink.
type Option func(*FileSink)

// WithDryRun encodes documents without touching the filesystem.
func WithDryRun(dryRun bool) Option {
	return func(s *FileSink) {
		s.dryRun = dryRun
	}
}

// WithLogger sets the sink logger.
func WithLogger(l logger.Logger) Option {
	return func(s *FileSink) {
		if l != nil {
			s.logger = l
		}
	}
}
