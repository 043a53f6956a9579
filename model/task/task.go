// Package task defines the contract between the runner and a reconstructed
// task object.
//
// A task type is a plain Go struct whose pointer implements Task. The runner
// fills the struct from the descriptor, calls SetupSink once and then Work
// once, both on the calling goroutine:
//
//	type Export struct {
//		Table string
//		Sink  task.Sink
//	}
//
//	func (e *Export) SetupSink(ctx context.Context) error { return e.Sink.Setup(ctx) }
//	func (e *Export) Work(ctx context.Context) error {
//		e.Sink.Logger().Info("exporting", zap.String("table", e.Table))
//		...
//	}
package task

import (
	"context"
	"reflect"
)

// Task is a unit of work reconstructed from a descriptor.
type Task interface {
	// SetupSink routes the task's own output according to its configuration.
	SetupSink(ctx context.Context) error
	// Work performs the unit of work.
	Work(ctx context.Context) error
}

var taskType = reflect.TypeOf((*Task)(nil)).Elem()

// Implements reports whether a pointer to rType implements Task.
func Implements(rType reflect.Type) bool {
	if rType == nil {
		return false
	}
	if rType.Kind() == reflect.Ptr {
		return rType.Implements(taskType)
	}
	return reflect.PointerTo(rType).Implements(taskType)
}
