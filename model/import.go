package model

import "strings"

// Import maps a short package alias to its full Go package path, so that a
// descriptor can name a task type as "builtin.Sleep" instead of
// "github.com/viant/jobrunner/task/builtin.Sleep".
type Import struct {
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	PkgPath string `json:"pkgPath,omitempty" yaml:"pkgPath,omitempty"`
}

// Imports represents a collection of package imports
type Imports []*Import

// NewImport creates an import whose alias is the last element of pkgPath.
func NewImport(pkgPath string) *Import {
	alias := pkgPath
	if idx := strings.LastIndex(pkgPath, "/"); idx >= 0 {
		alias = pkgPath[idx+1:]
	}
	return &Import{Package: alias, PkgPath: pkgPath}
}

// IsUnique reports whether no alias is declared twice.
func (i Imports) IsUnique() bool {
	var unique = make(map[string]bool)
	for _, item := range i {
		if unique[item.Package] {
			return false
		}
		unique[item.Package] = true
	}
	return true
}

// PkgPath returns the package path for alias pkg, or "".
func (i Imports) PkgPath(pkg string) string {
	for _, item := range i {
		if item != nil && item.Package == pkg {
			return item.PkgPath
		}
	}
	return ""
}

// HasPkgPath reports whether pkgPath has an alias.
func (i Imports) HasPkgPath(pkgPath string) bool {
	for _, item := range i {
		if item != nil && item.PkgPath == pkgPath {
			return true
		}
	}
	return false
}

// Merge returns i followed by the entries of other whose alias i lacks.
func (i Imports) Merge(other Imports) Imports {
	result := append(Imports{}, i...)
	for _, item := range other {
		if item == nil || result.PkgPath(item.Package) != "" {
			continue
		}
		result = append(result, item)
	}
	return result
}
