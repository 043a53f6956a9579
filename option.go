package jobrunner

import (
	"io"

	"github.com/viant/jobrunner/service/dao/descriptor"
	"github.com/viant/jobrunner/service/diagnostic"
	"github.com/viant/jobrunner/service/runner"
	"github.com/viant/jobrunner/tracing"
	"github.com/viant/x"
	"go.uber.org/zap"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises a Service.
type Option func(s *Service)

// WithConfig sets the worker configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithLogger sets the worker logger, replacing the one built from
// Config.Logging.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTaskTypes registers additional task types.
func WithTaskTypes(types ...*x.Type) Option {
	return func(s *Service) {
		s.taskTypes = append(s.taskTypes, types...)
	}
}

// WithCapture sets the armed diagnostic capture. Defaults to diagnostic.Armed.
func WithCapture(capture *diagnostic.Capture) Option {
	return func(s *Service) { s.capture = capture }
}

// WithDescriptorDAO sets the descriptor storage.
func WithDescriptorDAO(dao descriptor.Service) Option {
	return func(s *Service) { s.dao = dao }
}

// WithErrorWriter sets where run errors are printed. Defaults to stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(s *Service) { s.errWriter = w }
}

// WithRunnerOptions passes extra options to the task runner, for example a
// custom plugin loader.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(s *Service) {
		s.runnerOptions = append(s.runnerOptions, opts...)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter instead of the file named by Config.Tracing. The first
// successful initialisation wins.
func WithTracingExporter(exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(Name, Version, exporter)
	}
}
