// Package descriptor stores raw task descriptors inside working directories.
// The bytes are opaque at this layer; model/descriptor decodes them.
package descriptor

import "context"

// Service loads and saves the descriptor of a working directory.
type Service interface {
	// Load returns the descriptor bytes stored in dir.
	Load(ctx context.Context, dir string) ([]byte, error)
	// Save stores data as the descriptor of dir.
	Save(ctx context.Context, dir string, data []byte) error
	// Location returns where the descriptor of dir lives.
	Location(dir string) string
}
