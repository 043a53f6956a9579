package task

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Sink Sink
}

func (s *sample) SetupSink(ctx context.Context) error { return s.Sink.Setup(ctx) }
func (s *sample) Work(ctx context.Context) error      { return nil }

type notATask struct{}

func TestImplements(t *testing.T) {
	testCases := []struct {
		name     string
		rType    reflect.Type
		expected bool
	}{
		{name: "struct", rType: reflect.TypeOf(sample{}), expected: true},
		{name: "pointer", rType: reflect.TypeOf(&sample{}), expected: true},
		{name: "unrelated", rType: reflect.TypeOf(notATask{}), expected: false},
		{name: "nil", rType: nil, expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Implements(tc.rType))
		})
	}
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", WorkDir(ctx))
	assert.Equal(t, "", RunID(ctx))

	ctx = WithRunID(WithWorkDir(ctx, "/scratch/job-1"), "run-1")
	assert.Equal(t, "/scratch/job-1", WorkDir(ctx))
	assert.Equal(t, "run-1", RunID(ctx))
}

func TestSink_Setup(t *testing.T) {
	dir := t.TempDir()
	s := &sample{Sink: Sink{Level: "info", Format: "json", File: "task.log"}}

	assert.NotNil(t, s.Sink.Logger(), "logger before setup must be usable")
	ctx := WithRunID(WithWorkDir(context.Background(), dir), "run-42")
	assert.NoError(t, s.SetupSink(ctx))

	s.Sink.Logger().Info("hello from task")
	assert.NoError(t, s.Sink.Close())

	data, err := os.ReadFile(filepath.Join(dir, "task.log"))
	assert.NoError(t, err)
	assert.Contains(t, string(data), "hello from task")
	assert.Contains(t, string(data), "run-42")
}

func TestSink_SetupError(t *testing.T) {
	s := &Sink{Output: "file"}
	assert.Error(t, s.Setup(context.Background()))
}
