package task

import (
	"context"
	"fmt"

	"github.com/viant/jobrunner/logging"
	"go.uber.org/zap"
)

// Sink is the output configuration a task carries in its descriptor. A
// relative File is resolved against the run's working directory.
type Sink struct {
	Level      string
	Format     string
	Output     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int

	logger *zap.Logger
}

// Config returns the logging configuration for the sink.
func (s *Sink) Config() logging.Config {
	return logging.Config{
		Level:      s.Level,
		Format:     s.Format,
		Output:     s.Output,
		File:       s.File,
		MaxSize:    s.MaxSize,
		MaxBackups: s.MaxBackups,
		MaxAge:     s.MaxAge,
	}
}

// Setup builds the sink logger. It is meant to be called from a task's
// SetupSink method.
func (s *Sink) Setup(ctx context.Context) error {
	cfg := s.Config().Resolve(WorkDir(ctx))
	logger, err := logging.New(&cfg)
	if err != nil {
		return fmt.Errorf("configuring task sink: %w", err)
	}
	if id := RunID(ctx); id != "" {
		logger = logger.With(zap.String("run", id))
	}
	s.logger = logger
	return nil
}

// Logger returns the configured logger, or a no-op logger before Setup.
func (s *Sink) Logger() *zap.Logger {
	if s == nil || s.logger == nil {
		return logging.Nop()
	}
	return s.logger
}

// Close flushes buffered sink output.
func (s *Sink) Close() error {
	if s == nil || s.logger == nil {
		return nil
	}
	return s.logger.Sync()
}
