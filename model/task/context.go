package task

import "context"

type contextKey string

const (
	workDirKey = contextKey("work-dir")
	runIDKey   = contextKey("run-id")
)

// WithWorkDir returns ctx carrying the working directory of the run.
func WithWorkDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workDirKey, dir)
}

// WorkDir returns the working directory of the run, or "".
func WorkDir(ctx context.Context) string {
	dir, _ := ctx.Value(workDirKey).(string)
	return dir
}

// WithRunID returns ctx carrying the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunID returns the run identifier, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}
