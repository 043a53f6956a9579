package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jobrunner/extension"
	"github.com/viant/jobrunner/model/descriptor"
	"github.com/viant/jobrunner/model/task"
	"github.com/viant/jobrunner/service/dao"
	"github.com/viant/jobrunner/service/dao/descriptor/memory"
	"github.com/viant/jobrunner/service/diagnostic"
	"go.uber.org/zap"
)

type probe struct {
	Message string
	Fail    string
	Panic   bool
	SinkErr bool
	Sink    task.Sink
}

var (
	workCalls   atomic.Int32
	lastMessage atomic.Value
	lastWorkDir atomic.Value
)

func (p *probe) SetupSink(ctx context.Context) error {
	if p.SinkErr {
		return errors.New("sink unavailable")
	}
	return p.Sink.Setup(ctx)
}

func (p *probe) Work(ctx context.Context) error {
	workCalls.Add(1)
	lastMessage.Store(p.Message)
	lastWorkDir.Store(task.WorkDir(ctx))
	p.Sink.Logger().Info("working", zap.String("message", p.Message))
	defer p.Sink.Close()
	if p.Panic {
		panic("boom")
	}
	if p.Fail != "" {
		return errors.New(p.Fail)
	}
	return nil
}

const probeHeader = "version: 1\ntype: runner.probe\n"

func newTestService(t *testing.T, content string) (*Service, string, *bytes.Buffer, *diagnostic.Capture) {
	t.Helper()
	types := extension.NewTypes()
	require.NoError(t, types.RegisterValues(&probe{}))
	store := memory.New()
	dir := t.TempDir()
	if content != "" {
		require.NoError(t, store.Save(context.Background(), dir, []byte(content)))
	}
	stderr := new(bytes.Buffer)
	capture := diagnostic.New()
	srv := New(types, store, WithErrorWriter(stderr), WithCapture(capture))
	workCalls.Store(0)
	lastMessage.Store("")
	return srv, dir, stderr, capture
}

func TestService_Run(t *testing.T) {
	var testCases = []struct {
		description string
		content     string
		expectCalls int32
		expectPhase Phase
		expectErr   func(t *testing.T, err error)
		expectMsg   string
	}{
		{
			description: "valid descriptor",
			content:     probeHeader + "task:\n  message: hello\n",
			expectCalls: 1,
			expectPhase: PhaseSuccessExit,
		},
		{
			description: "descriptor without task state",
			content:     probeHeader,
			expectCalls: 1,
			expectPhase: PhaseSuccessExit,
		},
		{
			description: "missing descriptor",
			expectPhase: PhaseFailureExit,
			expectErr: func(t *testing.T, err error) {
				var target *DeserializationError
				assert.ErrorAs(t, err, &target)
				assert.ErrorIs(t, err, dao.ErrNotFound)
			},
		},
		{
			description: "truncated descriptor",
			content:     "version: 1\ntype: [runner.pro",
			expectPhase: PhaseFailureExit,
			expectErr: func(t *testing.T, err error) {
				var target *DeserializationError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			description: "unsupported version",
			content:     "version: 2\ntype: runner.probe\nframework: 0.9.0\n",
			expectPhase: PhaseFailureExit,
			expectErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, descriptor.ErrUnsupportedVersion)
				assert.Contains(t, err.Error(), "got 2, expected 1")
			},
		},
		{
			description: "unknown type",
			content:     "version: 1\ntype: acme.Missing\n",
			expectPhase: PhaseFailureExit,
			expectErr: func(t *testing.T, err error) {
				var target *DeserializationError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "acme.Missing", target.Type)
				assert.Contains(t, err.Error(), "acme.Missing")
			},
		},
		{
			description: "work error",
			content:     probeHeader + "task:\n  fail: disk full\n",
			expectCalls: 1,
			expectPhase: PhaseFailureExit,
			expectErr: func(t *testing.T, err error) {
				var target *TaskError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, PhaseExecute, target.Phase)
				assert.False(t, target.Panicked())
				assert.Contains(t, err.Error(), "disk full")
			},
		},
		{
			description: "work panic",
			content:     probeHeader + "task:\n  panic: true\n",
			expectCalls: 1,
			expectPhase: PhaseFailureExit,
			expectErr: func(t *testing.T, err error) {
				var target *TaskError
				require.ErrorAs(t, err, &target)
				assert.True(t, target.Panicked())
				assert.Contains(t, err.Error(), "boom")
			},
		},
		{
			description: "sink error",
			content:     probeHeader + "task:\n  sinkErr: true\n",
			expectPhase: PhaseFailureExit,
			expectErr: func(t *testing.T, err error) {
				var target *TaskError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, PhaseConfigureSink, target.Phase)
			},
		},
	}

	for _, testCase := range testCases {
		srv, dir, stderr, capture := newTestService(t, testCase.content)
		err := srv.Run(context.Background(), dir)

		assert.Equal(t, testCase.expectCalls, workCalls.Load(), testCase.description)
		assert.Equal(t, testCase.expectPhase, srv.Phase(), testCase.description)
		assert.Equal(t, filepath.Join(dir, diagnostic.FileName), capture.Output(), testCase.description)
		if testCase.expectErr == nil {
			assert.NoError(t, err, testCase.description)
			assert.Empty(t, stderr.String(), testCase.description)
			continue
		}
		require.Error(t, err, testCase.description)
		testCase.expectErr(t, err)
		assert.Equal(t, err.Error()+"\n", stderr.String(), testCase.description)
	}
}

func TestService_RunConvertsState(t *testing.T) {
	srv, dir, _, _ := newTestService(t, probeHeader+"task:\n  message: hello\n")
	require.NoError(t, srv.Run(context.Background(), dir))
	assert.Equal(t, "hello", lastMessage.Load())
	assert.Equal(t, dir, lastWorkDir.Load())
}

func TestService_RunWorkDir(t *testing.T) {
	notADir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o644))

	var testCases = []struct {
		description string
		workDir     string
	}{
		{description: "empty", workDir: ""},
		{description: "blank", workDir: "  "},
		{description: "missing", workDir: filepath.Join(t.TempDir(), "missing")},
		{description: "regular file", workDir: notADir},
	}
	for _, testCase := range testCases {
		srv, _, stderr, capture := newTestService(t, "")
		err := srv.Run(context.Background(), testCase.workDir)
		var target *ConfigError
		assert.ErrorAs(t, err, &target, testCase.description)
		assert.Equal(t, PhaseFailureExit, srv.Phase(), testCase.description)
		assert.Equal(t, "", capture.Output(), testCase.description)
		assert.True(t, strings.HasPrefix(stderr.String(), "configuration error"), testCase.description)
		assert.EqualValues(t, 0, workCalls.Load(), testCase.description)
	}
}

func TestService_RunOnce(t *testing.T) {
	srv, dir, _, _ := newTestService(t, probeHeader)
	require.NoError(t, srv.Run(context.Background(), dir))
	assert.ErrorIs(t, srv.Run(context.Background(), dir), ErrAlreadyRan)
	assert.EqualValues(t, 1, workCalls.Load())
}

func TestService_RunScope(t *testing.T) {
	srv, dir, _, _ := newTestService(t, probeHeader)
	require.NoError(t, srv.Run(context.Background(), dir))
	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, []string{cwd, dir}, srv.Scope().Dirs())
}

func TestService_RunSinkFile(t *testing.T) {
	srv, dir, _, _ := newTestService(t, probeHeader+"task:\n  message: hi\n  sink:\n    level: info\n    file: task.log\n")
	require.NoError(t, srv.Run(context.Background(), dir))
	_, err := os.Stat(filepath.Join(dir, "task.log"))
	assert.NoError(t, err)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "deserialize", PhaseDeserialize.String())
	assert.Equal(t, "unknown", Phase(99).String())
	assert.True(t, PhaseSignalExit.Terminal())
	assert.False(t, PhaseExecute.Terminal())
}
