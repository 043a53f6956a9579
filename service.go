package jobrunner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/viant/jobrunner/extension"
	"github.com/viant/jobrunner/logging"
	ddao "github.com/viant/jobrunner/service/dao/descriptor"
	"github.com/viant/jobrunner/service/dao/descriptor/fs"
	"github.com/viant/jobrunner/service/diagnostic"
	"github.com/viant/jobrunner/service/runner"
	"github.com/viant/jobrunner/task/builtin"
	"github.com/viant/jobrunner/tracing"
	"github.com/viant/x"
	"go.uber.org/zap"
)

const (
	// Name is the service name reported to tracing.
	Name = "jobrunner"
	// Version is the worker version.
	Version = "0.1.0"
)

// Service wires the runner with its storage, registry and diagnostics.
type Service struct {
	config        *Config
	logger        *zap.Logger
	types         *extension.Types
	taskTypes     []*x.Type
	capture       *diagnostic.Capture
	dao           ddao.Service
	errWriter     io.Writer
	runnerOptions []runner.Option
	runner        *runner.Service
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.errWriter == nil {
		s.errWriter = os.Stderr
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.logger == nil {
		logger, err := logging.New(&s.config.Logging)
		if err != nil {
			return err
		}
		s.logger = logger
	}
	if err := tracing.Init(Name, Version, s.config.Tracing.File); err != nil {
		s.logger.Warn("tracing disabled", zap.String("file", s.config.Tracing.File), zap.Error(err))
	}
	s.types = extension.NewTypes()
	if err := builtin.Register(s.types); err != nil {
		return err
	}
	for _, aType := range s.taskTypes {
		if err := s.types.Register(aType); err != nil {
			return err
		}
	}
	if s.dao == nil {
		s.dao = fs.New(s.config.Descriptor.File)
	}
	if s.capture == nil {
		s.capture = diagnostic.Armed()
	}
	s.capture.Configure(s.diagnosticOptions()...)
	runnerOptions := []runner.Option{
		runner.WithLogger(s.logger),
		runner.WithCapture(s.capture),
		runner.WithErrorWriter(s.errWriter),
		runner.WithReportName(s.config.Diagnostics.File),
	}
	s.runner = runner.New(s.types, s.dao, append(runnerOptions, s.runnerOptions...)...)
	return nil
}

func (s *Service) diagnosticOptions() []diagnostic.Option {
	cfg := s.config.Diagnostics
	return []diagnostic.Option{
		diagnostic.WithSampleRate(cfg.SampleRate),
		diagnostic.WithDepth(cfg.Depth),
		diagnostic.WithTopN(cfg.TopN),
		diagnostic.WithProfileFile(cfg.ProfileFile),
		diagnostic.WithLogger(s.logger),
	}
}

// Run runs the task described in workDir. See runner.Service.Run.
func (s *Service) Run(ctx context.Context, workDir string) error {
	defer s.logger.Sync()
	return s.runner.Run(ctx, workDir)
}

// Types returns the task type registry.
func (s *Service) Types() *extension.Types {
	return s.types
}

// Runner returns the task runner.
func (s *Service) Runner() *runner.Service {
	return s.runner
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// New creates a worker service.
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

// Main runs the task described in workDir and returns the process exit code:
// 0 on success, 1 on any error. Errors are printed to the error writer.
func Main(ctx context.Context, workDir string, options ...Option) int {
	srv := &Service{config: DefaultConfig()}
	if err := srv.init(options); err != nil {
		fmt.Fprintln(srv.errWriter, err)
		return 1
	}
	defer tracing.Shutdown(ctx)
	if err := srv.Run(ctx, workDir); err != nil {
		return 1
	}
	return 0
}
