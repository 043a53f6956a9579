// Package model holds types shared by the task descriptor, the task type
// registry and the runner. The task contract lives in model/task and the
// on-disk descriptor format in model/descriptor.
package model
