package runner

import (
	"io"

	"github.com/viant/afs"
	"github.com/viant/jobrunner/service/diagnostic"
	"go.uber.org/zap"
)

// Option customises a Service.
type Option func(s *Service)

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCapture sets the diagnostic capture informed of the report location.
func WithCapture(capture *diagnostic.Capture) Option {
	return func(s *Service) { s.capture = capture }
}

// WithErrorWriter sets where run errors are printed. Defaults to stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.errWriter = w
		}
	}
}

// WithLoader sets the task plugin loader.
func WithLoader(loader Loader) Option {
	return func(s *Service) { s.scope = NewScope(loader) }
}

// WithReportName sets the diagnostic report file name inside the working
// directory.
func WithReportName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.reportName = name
		}
	}
}

// WithFileSystem sets the storage used to inspect the working directory.
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) {
		if fs != nil {
			s.fs = fs
		}
	}
}
