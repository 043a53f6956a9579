package extension

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/viant/jobrunner/model"
	"github.com/viant/jobrunner/model/task"
	"github.com/viant/x"
)

// Types is a registry of task types keyed by "<pkgPath>.<Name>". Every
// registered package also gets an alias equal to its last path element.
type Types struct {
	registry *x.Registry
	imports  model.Imports
	keys     []string
	mux      sync.RWMutex
}

// Register adds a task type to the registry. The pointer to the type must
// implement task.Task.
func (t *Types) Register(dataType *x.Type) error {
	if dataType == nil || dataType.Type == nil {
		return fmt.Errorf("cannot register nil type")
	}
	rType := dataType.Type
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
		dataType = x.NewType(rType)
	}
	if !task.Implements(rType) {
		return fmt.Errorf("type %v does not implement task.Task", rType)
	}

	t.mux.Lock()
	defer t.mux.Unlock()
	if pkgPath := rType.PkgPath(); pkgPath != "" && !t.imports.HasPkgPath(pkgPath) {
		if anImport := model.NewImport(pkgPath); t.imports.PkgPath(anImport.Package) == "" {
			t.imports = append(t.imports, anImport)
		}
	}
	key := typeKey(rType)
	if t.registry.Lookup(key) == nil {
		t.keys = append(t.keys, key)
	}
	t.registry.Register(dataType)
	return nil
}

// RegisterValues registers the types of the supplied task values.
func (t *Types) RegisterValues(values ...task.Task) error {
	for _, value := range values {
		if err := t.Register(x.NewType(reflect.TypeOf(value))); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the registered type for dataType, or nil. dataType is either
// "<pkgPath>.<Name>" or "<alias>.<Name>".
func (t *Types) Lookup(dataType string, options ...Option) *x.Type {
	temp := &Types{}
	for _, opt := range options {
		opt(temp)
	}

	t.mux.RLock()
	defer t.mux.RUnlock()
	if idx := strings.LastIndex(dataType, "."); idx != -1 {
		pkg, typeName := dataType[:idx], dataType[idx+1:]
		if pkgPath := temp.imports.PkgPath(pkg); pkgPath != "" {
			pkg = pkgPath
		} else if pkgPath := t.imports.PkgPath(pkg); pkgPath != "" {
			pkg = pkgPath
		}
		dataType = pkg + "." + typeName
	}
	return t.registry.Lookup(dataType)
}

// Imports returns the aliases known to the registry.
func (t *Types) Imports() model.Imports {
	t.mux.RLock()
	defer t.mux.RUnlock()
	return append(model.Imports{}, t.imports...)
}

// Keys returns the sorted keys of all registered types.
func (t *Types) Keys() []string {
	t.mux.RLock()
	defer t.mux.RUnlock()
	result := append([]string{}, t.keys...)
	sort.Strings(result)
	return result
}

// NewTypes creates an empty registry.
func NewTypes(options ...x.RegistryOption) *Types {
	return &Types{registry: x.NewRegistry(options...)}
}

func typeKey(rType reflect.Type) string {
	if rType.PkgPath() == "" {
		return rType.Name()
	}
	return rType.PkgPath() + "." + rType.Name()
}
