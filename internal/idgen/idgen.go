package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier. Override in tests.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier.
func New() string { return NewFunc() }

// RunID returns an identifier for a single worker invocation. It is short
// enough to be repeated on every log line.
func RunID() string {
	id := NewFunc()
	if len(id) > 8 {
		id = id[:8]
	}
	return "run-" + id
}
