// Package runner reconstructs one task from the descriptor in a working
// directory and runs it.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"github.com/viant/afs"
	"github.com/viant/jobrunner/extension"
	"github.com/viant/jobrunner/internal/clock"
	"github.com/viant/jobrunner/internal/idgen"
	"github.com/viant/jobrunner/logging"
	"github.com/viant/jobrunner/model/descriptor"
	"github.com/viant/jobrunner/model/task"
	ddao "github.com/viant/jobrunner/service/dao/descriptor"
	"github.com/viant/jobrunner/service/diagnostic"
	"github.com/viant/jobrunner/tracing"
	"github.com/viant/structology/conv"
	"go.uber.org/zap"
)

// Service runs a single task per process.
type Service struct {
	types      *extension.Types
	dao        ddao.Service
	capture    *diagnostic.Capture
	scope      *Scope
	fs         afs.Service
	converter  *conv.Converter
	logger     *zap.Logger
	errWriter  io.Writer
	reportName string
	phase      atomic.Int32
	ran        atomic.Bool
}

// Phase returns the current phase.
func (s *Service) Phase() Phase {
	return Phase(s.phase.Load())
}

// Scope returns the plugin search scope.
func (s *Service) Scope() *Scope {
	return s.scope
}

// Run resolves workDir, reconstructs the task described in it and runs the
// task to completion. Any error is printed to the error writer and returned.
// Run may be called only once.
func (s *Service) Run(ctx context.Context, workDir string) (err error) {
	if !s.ran.CompareAndSwap(false, true) {
		return ErrAlreadyRan
	}
	runID := idgen.RunID()
	logger := s.logger.With(zap.String("run", runID))
	ctx = task.WithRunID(ctx, runID)
	ctx, span := tracing.StartSpan(ctx, "jobrunner.run")
	span.Set(tracing.RunIDKey, runID)
	started := clock.Now()
	defer func() {
		tracing.EndSpan(span, err)
		if err != nil {
			s.phase.Store(int32(PhaseFailureExit))
			logger.Info("run failed", zap.Duration("elapsed", clock.Since(started)), zap.Error(err))
			fmt.Fprintln(s.errWriter, err)
			return
		}
		s.phase.Store(int32(PhaseSuccessExit))
		logger.Info("run completed", zap.Duration("elapsed", clock.Since(started)))
	}()

	var dir string
	err = s.enter(ctx, logger, PhaseResolvePaths, func(ctx context.Context) error {
		resolved, resolveErr := s.resolveDir(ctx, workDir)
		if resolveErr != nil {
			return resolveErr
		}
		dir = resolved
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			s.scope.Append(cwd)
		}
		s.scope.Append(dir)
		s.capture.SetOutput(filepath.Join(dir, s.reportName))
		return nil
	})
	if err != nil {
		return err
	}
	ctx = task.WithWorkDir(ctx, dir)
	span.Set(tracing.WorkDirKey, dir)

	var aTask task.Task
	var typeName string
	err = s.enter(ctx, logger, PhaseDeserialize, func(ctx context.Context) error {
		var deserializeErr error
		aTask, typeName, deserializeErr = s.deserialize(ctx, dir)
		return deserializeErr
	})
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("task", typeName))
	span.Set(tracing.TaskKey, typeName)

	if err = s.enter(ctx, logger, PhaseConfigureSink, func(ctx context.Context) error {
		return invoke(PhaseConfigureSink, typeName, func() error { return aTask.SetupSink(ctx) })
	}); err != nil {
		return err
	}
	return s.enter(ctx, logger, PhaseExecute, func(ctx context.Context) error {
		return invoke(PhaseExecute, typeName, func() error { return aTask.Work(ctx) })
	})
}

// enter runs fn as phase inside its own span.
func (s *Service) enter(ctx context.Context, logger *zap.Logger, phase Phase, fn func(ctx context.Context) error) (err error) {
	s.phase.Store(int32(phase))
	ctx, span := tracing.StartPhase(ctx, phase.String())
	started := clock.Now()
	logger.Debug("phase started", zap.Stringer("phase", phase))
	defer func() {
		tracing.EndSpan(span, err)
		logger.Debug("phase finished", zap.Stringer("phase", phase), zap.Duration("elapsed", clock.Since(started)), zap.Error(err))
	}()
	return fn(ctx)
}

func (s *Service) resolveDir(ctx context.Context, workDir string) (string, error) {
	if strings.TrimSpace(workDir) == "" {
		return "", &ConfigError{Reason: "working directory is required"}
	}
	dir, err := filepath.Abs(workDir)
	if err != nil {
		return "", &ConfigError{Reason: "invalid working directory " + workDir, Err: err}
	}
	object, err := s.fs.Object(ctx, dir)
	if err != nil {
		return "", &ConfigError{Reason: "working directory " + dir + " is not accessible", Err: err}
	}
	if !object.IsDir() {
		return "", &ConfigError{Reason: "working directory " + dir + " is not a directory"}
	}
	return dir, nil
}

func (s *Service) deserialize(ctx context.Context, dir string) (task.Task, string, error) {
	location := s.dao.Location(dir)
	data, err := s.dao.Load(ctx, dir)
	if err != nil {
		return nil, "", &DeserializationError{Location: location, Err: err}
	}
	envelope, err := descriptor.Decode(data)
	if err != nil {
		return nil, "", &DeserializationError{Location: location, Err: err}
	}
	aType, err := s.scope.Resolve(ctx, s.types, envelope.Type, envelope.Imports)
	if err != nil {
		return nil, envelope.Type, &DeserializationError{Location: location, Type: envelope.Type, Err: err}
	}
	rType := aType.Type
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	instance := reflect.New(rType).Interface()
	if len(envelope.Task) > 0 {
		if err = s.converter.Convert(envelope.Task, instance); err != nil {
			return nil, envelope.Type, &DeserializationError{Location: location, Type: envelope.Type, Err: err}
		}
	}
	aTask, ok := instance.(task.Task)
	if !ok {
		return nil, envelope.Type, &DeserializationError{Location: location, Type: envelope.Type, Err: fmt.Errorf("%T does not implement task.Task", instance)}
	}
	return aTask, envelope.Type, nil
}

// invoke calls fn, converting a returned error or a panic into a TaskError.
func invoke(phase Phase, typeName string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TaskError{Phase: phase, Type: typeName, Err: fmt.Errorf("panic: %v", r), Stack: debug.Stack()}
		}
	}()
	if err = fn(); err != nil {
		return &TaskError{Phase: phase, Type: typeName, Err: err}
	}
	return nil
}

// New creates a runner resolving task types with types and reading
// descriptors through dao.
func New(types *extension.Types, dao ddao.Service, opts ...Option) *Service {
	options := conv.DefaultOptions()
	options.IgnoreUnmapped = true
	s := &Service{
		types:      types,
		dao:        dao,
		scope:      NewScope(nil),
		fs:         afs.New(),
		converter:  conv.NewConverter(options),
		logger:     logging.Nop(),
		errWriter:  os.Stderr,
		reportName: diagnostic.FileName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
