package builtin

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/viant/jobrunner/model/task"
	"go.uber.org/zap"
)

// Stdout is where Printer writes.
var Stdout io.Writer = os.Stdout

// Printer prints Message to standard output.
type Printer struct {
	Message string
	Sink    task.Sink
}

func (p *Printer) SetupSink(ctx context.Context) error { return p.Sink.Setup(ctx) }

func (p *Printer) Work(ctx context.Context) error {
	defer p.Sink.Close()
	p.Sink.Logger().Info("print", zap.String("message", p.Message))
	if _, err := fmt.Fprintln(Stdout, p.Message); err != nil {
		return fmt.Errorf("failed to print message: %w", err)
	}
	return nil
}
