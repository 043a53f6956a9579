package runner

import (
	"errors"
	"fmt"
)

// ErrAlreadyRan is returned when Run is called more than once on a Service.
var ErrAlreadyRan = errors.New("runner: a task has already been run by this process")

// ConfigError reports an unusable startup parameter.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DeserializationError reports a descriptor that could not be turned into a
// task: missing, truncated, of an unsupported version or naming an unknown
// type.
type DeserializationError struct {
	Location string
	Type     string
	Err      error
}

func (e *DeserializationError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("failed to deserialize task %s from %s: %v", e.Type, e.Location, e.Err)
	}
	return fmt.Sprintf("failed to deserialize task from %s: %v", e.Location, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// TaskError reports a failure raised by the task itself, either as a
// returned error or a panic.
type TaskError struct {
	Phase Phase
	Type  string
	Err   error
	// Stack is set when the task panicked.
	Stack []byte
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed during %s: %v", e.Type, e.Phase, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Panicked reports whether the error was recovered from a panic.
func (e *TaskError) Panicked() bool { return len(e.Stack) > 0 }
