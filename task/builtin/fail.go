package builtin

import (
	"context"
	"errors"

	"github.com/viant/jobrunner/model/task"
	"go.uber.org/zap"
)

// DefaultFailMessage is returned by Fail when Message is empty.
const DefaultFailMessage = "task failed"

// Fail waits After, then returns an error carrying Message.
type Fail struct {
	Message string
	After   string
	Sink    task.Sink
}

func (f *Fail) SetupSink(ctx context.Context) error { return f.Sink.Setup(ctx) }

func (f *Fail) Work(ctx context.Context) error {
	defer f.Sink.Close()
	after, err := parseDuration(f.After)
	if err != nil {
		return err
	}
	if err = wait(ctx, after); err != nil {
		return err
	}
	message := f.Message
	if message == "" {
		message = DefaultFailMessage
	}
	f.Sink.Logger().Warn("failing", zap.String("message", message))
	return errors.New(message)
}
