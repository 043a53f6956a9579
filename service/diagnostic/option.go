package diagnostic

import (
	"github.com/viant/afs"
	"go.uber.org/zap"
)

// Option customises a Capture.
type Option func(s *state)

// WithSampleRate sets runtime.MemProfileRate. A rate of 1 records every
// allocation; values below 1 are ignored.
func WithSampleRate(rate int) Option {
	return func(s *state) {
		if rate > 0 {
			s.sampleRate = rate
		}
	}
}

// WithDepth sets how many frames of each allocation traceback are kept.
func WithDepth(depth int) Option {
	return func(s *state) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

// WithTopN sets the number of ranked entries written to the report.
func WithTopN(n int) Option {
	return func(s *state) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithProfileFile also persists the raw heap profile under name, next to the
// report. An empty name disables it.
func WithProfileFile(name string) Option {
	return func(s *state) { s.profileFile = name }
}

// WithLogger sets the logger used on the signal path.
func WithLogger(logger *zap.Logger) Option {
	return func(s *state) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFileSystem sets the storage used to write diagnostic artifacts.
func WithFileSystem(fs afs.Service) Option {
	return func(s *state) {
		if fs != nil {
			s.fs = fs
		}
	}
}

func withExit(fn func(code int)) Option {
	return func(s *state) { s.exit = fn }
}

func withRaise(fn func() error) Option {
	return func(s *state) { s.raise = fn }
}
