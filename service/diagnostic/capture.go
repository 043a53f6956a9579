// Package diagnostic leaves a heap allocation report behind when the process
// is terminated with SIGTERM.
//
// Arm is meant to be the first statement of main. It raises the heap
// profiling sample rate and subscribes a watcher goroutine to SIGTERM. Once the
// working directory is known the caller registers the report location with
// SetOutput. When the signal arrives the watcher ranks live allocations by
// site, writes the top entries to that location and exits the process with
// status 0. If no location was registered the default SIGTERM disposition is
// restored and the signal re-raised, so the process dies as if it had never
// been intercepted.
package diagnostic

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/google/pprof/profile"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/jobrunner/logging"
	"go.uber.org/zap"
)

const (
	// DefaultSampleRate is the heap profiling rate in bytes.
	DefaultSampleRate = 64 * 1024
	// DefaultDepth is the number of traceback frames kept per allocation.
	DefaultDepth = 25
	// DefaultTopN is the number of entries in the report.
	DefaultTopN = 10
	// FileName is the report name inside the working directory.
	FileName = "job.tracemalloc"
	// ProfileFileName is the suggested raw heap profile name.
	ProfileFileName = "job.heap.pprof"
	// SampleRateEnv overrides DefaultSampleRate.
	SampleRateEnv = "JOBRUNNER_MEMPROFILE_RATE"

	exitTerminated = 128 + int(syscall.SIGTERM)
)

type state struct {
	sampleRate  int
	depth       int
	topN        int
	profileFile string
	logger      *zap.Logger
	fs          afs.Service
	exit        func(code int)
	raise       func() error
}

// Capture is the process-wide SIGTERM diagnostic.
type Capture struct {
	state    atomic.Pointer[state]
	output   atomic.Pointer[string]
	signals  chan os.Signal
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

var (
	armed   *Capture
	armOnce sync.Once
)

// Arm creates, starts and returns the process-wide Capture. Subsequent calls
// return the same Capture and ignore opts.
func Arm(opts ...Option) *Capture {
	armOnce.Do(func() {
		armed = New(opts...)
		armed.Start()
	})
	return armed
}

// Armed returns the process-wide Capture, or nil before Arm.
func Armed() *Capture {
	return armed
}

// New creates a Capture that is not yet subscribed to signals.
func New(opts ...Option) *Capture {
	s := &state{
		sampleRate: sampleRateFromEnv(),
		depth:      DefaultDepth,
		topN:       DefaultTopN,
		logger:     logging.Nop(),
		fs:         afs.New(),
		exit:       os.Exit,
		raise:      raiseSelf,
	}
	for _, opt := range opts {
		opt(s)
	}
	c := &Capture{
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	c.state.Store(s)
	return c
}

func sampleRateFromEnv() int {
	if value := os.Getenv(SampleRateEnv); value != "" {
		if rate, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && rate > 0 {
			return rate
		}
	}
	return DefaultSampleRate
}

// Start applies the sample rate and subscribes the watcher to SIGTERM.
func (c *Capture) Start() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	runtime.MemProfileRate = c.state.Load().sampleRate
	signal.Notify(c.signals, syscall.SIGTERM)
	go c.watch()
}

// Configure applies opts to a started or stopped Capture. Settings are
// swapped atomically so the watcher always sees a consistent set.
func (c *Capture) Configure(opts ...Option) {
	if c == nil || len(opts) == 0 {
		return
	}
	prev := c.state.Load()
	next := *prev
	for _, opt := range opts {
		opt(&next)
	}
	if c.started.Load() && next.sampleRate != prev.sampleRate {
		runtime.MemProfileRate = next.sampleRate
	}
	c.state.Store(&next)
}

// SetOutput registers the report location. An empty path unregisters it.
func (c *Capture) SetOutput(location string) {
	if c == nil {
		return
	}
	c.output.Store(&location)
}

// Output returns the registered report location or "".
func (c *Capture) Output() string {
	if c == nil {
		return ""
	}
	if location := c.output.Load(); location != nil {
		return *location
	}
	return ""
}

// Stop unsubscribes the watcher. The default SIGTERM disposition is restored.
func (c *Capture) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() {
		signal.Stop(c.signals)
		close(c.done)
	})
}

func (c *Capture) watch() {
	select {
	case <-c.signals:
		c.handle()
	case <-c.done:
	}
}

func (c *Capture) handle() {
	s := c.state.Load()
	location := c.Output()
	if location == "" {
		c.terminate(s)
		return
	}
	c.dump(context.Background(), s, location)
	s.exit(0)
}

// terminate replays an unhandled SIGTERM.
func (c *Capture) terminate(s *state) {
	signal.Stop(c.signals)
	signal.Reset(syscall.SIGTERM)
	if err := s.raise(); err != nil {
		s.exit(exitTerminated)
	}
}

func raiseSelf() error {
	self, err := os.FindProcess(os.Getpid())
	if err != nil {
		return err
	}
	return self.Signal(syscall.SIGTERM)
}

// dump writes the report. Failures are logged and never propagated.
func (c *Capture) dump(ctx context.Context, s *state, location string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("heap snapshot panicked", zap.Any("panic", r))
		}
	}()
	if err := c.write(ctx, s, location); err != nil {
		s.logger.Warn("heap snapshot not written", zap.String("location", location), zap.Error(err))
	}
	logRSS(s.logger)
}

func (c *Capture) write(ctx context.Context, s *state, location string) error {
	runtime.GC()
	buf := new(bytes.Buffer)
	if err := pprof.Lookup("heap").WriteTo(buf, 0); err != nil {
		return fmt.Errorf("failed to capture heap profile: %w", err)
	}
	raw := buf.Bytes()
	prof, err := profile.Parse(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to parse heap profile: %w", err)
	}
	snapshot := NewSnapshot(prof, s.depth)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, strings.NewReader(snapshot.Report(s.topN))); err != nil {
		return fmt.Errorf("failed to write %s: %w", location, err)
	}
	if s.profileFile != "" {
		profileLocation := filepath.Join(filepath.Dir(location), s.profileFile)
		if err = s.fs.Upload(ctx, profileLocation, file.DefaultFileOsMode, bytes.NewReader(raw)); err != nil {
			return fmt.Errorf("failed to write %s: %w", profileLocation, err)
		}
	}
	s.logger.Info("heap snapshot written", zap.String("location", location), zap.Int("sites", len(snapshot)))
	return nil
}

func logRSS(logger *zap.Logger) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return
	}
	logger.Warn("terminating on SIGTERM", zap.Uint64("rss", info.RSS))
}
