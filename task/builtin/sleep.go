package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/jobrunner/model/task"
	"go.uber.org/zap"
)

// Sleep blocks for Duration, a time.ParseDuration string, or until the
// context is done.
type Sleep struct {
	Duration string
	Sink     task.Sink
}

func (s *Sleep) SetupSink(ctx context.Context) error { return s.Sink.Setup(ctx) }

func (s *Sleep) Work(ctx context.Context) error {
	defer s.Sink.Close()
	duration, err := parseDuration(s.Duration)
	if err != nil {
		return err
	}
	s.Sink.Logger().Info("sleeping", zap.Duration("duration", duration))
	return wait(ctx, duration)
}

func parseDuration(text string) (time.Duration, error) {
	if text == "" {
		return 0, nil
	}
	duration, err := time.ParseDuration(text)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("invalid duration %q: negative", text)
	}
	return duration, nil
}

func wait(ctx context.Context, duration time.Duration) error {
	if duration == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
