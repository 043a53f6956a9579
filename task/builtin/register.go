package builtin

import (
	"github.com/viant/jobrunner/extension"
	"github.com/viant/jobrunner/model/task"
)

// Tasks returns a zero value of every built-in task.
func Tasks() []task.Task {
	return []task.Task{&Nop{}, &Printer{}, &Sleep{}, &Fail{}}
}

// Register adds the built-in tasks to types under the "builtin" alias.
func Register(types *extension.Types) error {
	return types.RegisterValues(Tasks()...)
}
