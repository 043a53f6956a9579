package builtin

import (
	"context"

	"github.com/viant/jobrunner/model/task"
)

// Nop performs no operation and returns immediately.
type Nop struct {
	Sink task.Sink
}

func (n *Nop) SetupSink(ctx context.Context) error { return n.Sink.Setup(ctx) }

func (n *Nop) Work(ctx context.Context) error {
	defer n.Sink.Close()
	n.Sink.Logger().Debug("nop")
	return nil
}
