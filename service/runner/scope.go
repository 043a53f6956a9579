package runner

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"plugin"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/jobrunner/extension"
	"github.com/viant/jobrunner/model"
	"github.com/viant/x"
)

// PluginExt is the file extension of task plugins.
const PluginExt = ".so"

// RegisterSymbol is the symbol a task plugin exports:
//
//	func Register(types *extension.Types)
const RegisterSymbol = "Register"

// RegisterFunc adds a plugin's task types to a registry.
type RegisterFunc func(types *extension.Types)

// Loader opens a task plugin.
type Loader interface {
	Open(location string) (RegisterFunc, error)
}

type pluginLoader struct{}

func (pluginLoader) Open(location string) (RegisterFunc, error) {
	p, err := plugin.Open(location)
	if err != nil {
		return nil, err
	}
	symbol, err := p.Lookup(RegisterSymbol)
	if err != nil {
		return nil, err
	}
	switch fn := symbol.(type) {
	case func(*extension.Types):
		return fn, nil
	case *func(*extension.Types):
		return *fn, nil
	}
	return nil, fmt.Errorf("plugin %s: %s has type %T, expected func(*extension.Types)", location, RegisterSymbol, symbol)
}

// Scope is the ordered list of directories searched for task plugins when a
// descriptor names a type that is not compiled in.
type Scope struct {
	dirs   []string
	loaded map[string]bool
	loader Loader
	fs     afs.Service
	mux    sync.Mutex
}

// Append adds dir to the end of the scope. Duplicates are ignored.
func (s *Scope) Append(dir string) {
	if dir == "" {
		return
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, candidate := range s.dirs {
		if candidate == dir {
			return
		}
	}
	s.dirs = append(s.dirs, dir)
}

// Dirs returns the scope directories in search order.
func (s *Scope) Dirs() []string {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]string{}, s.dirs...)
}

// Resolve returns the registered type for dataType. When the registry does
// not know it, plugins named after the type's package are loaded from the
// scope directories until the type appears.
func (s *Scope) Resolve(ctx context.Context, types *extension.Types, dataType string, imports model.Imports) (*x.Type, error) {
	if aType := types.Lookup(dataType, extension.WithImports(imports)); aType != nil {
		return aType, nil
	}
	name := pluginName(dataType, imports)
	if name == "" {
		return nil, fmt.Errorf("type %v not registered", dataType)
	}
	for _, dir := range s.Dirs() {
		location := filepath.Join(dir, name+PluginExt)
		loaded, err := s.load(ctx, types, location)
		if err != nil {
			return nil, err
		}
		if !loaded {
			continue
		}
		if aType := types.Lookup(dataType, extension.WithImports(imports)); aType != nil {
			return aType, nil
		}
	}
	return nil, fmt.Errorf("type %v not registered and no plugin %s%s found in %v", dataType, name, PluginExt, s.Dirs())
}

func (s *Scope) load(ctx context.Context, types *extension.Types, location string) (bool, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.loaded[location] {
		return false, nil
	}
	exists, err := s.fs.Exists(ctx, location)
	if err != nil || !exists {
		return false, nil
	}
	register, err := s.loader.Open(location)
	if err != nil {
		return false, fmt.Errorf("failed to open plugin %s: %w", location, err)
	}
	s.loaded[location] = true
	register(types)
	return true, nil
}

// pluginName derives the plugin base name from the package part of dataType.
func pluginName(dataType string, imports model.Imports) string {
	index := strings.LastIndex(dataType, ".")
	if index <= 0 {
		return ""
	}
	pkg := dataType[:index]
	if pkgPath := imports.PkgPath(pkg); pkgPath != "" {
		pkg = pkgPath
	}
	return path.Base(pkg)
}

// NewScope creates an empty scope that opens plugins with loader. A nil
// loader uses the Go plugin package.
func NewScope(loader Loader) *Scope {
	if loader == nil {
		loader = pluginLoader{}
	}
	return &Scope{loader: loader, loaded: map[string]bool{}, fs: afs.New()}
}
