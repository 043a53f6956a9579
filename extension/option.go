package extension

import "github.com/viant/jobrunner/model"

// Option customises a single Lookup.
type Option func(*Types)

// WithImports resolves package aliases through imports before the
// registry's own aliases.
func WithImports(imports model.Imports) Option {
	return func(t *Types) {
		t.imports = imports
	}
}
