package glslbuild

import (
	"sync"

	"github.com/rosalana/sandbox/glsl"
	"github.com/rosalana/sandbox/sberr"
)

// Registry is a keyed store of modules. Two instances mediate compilation:
// the process-wide design-time registry seeded with the bundled modules,
// and a per-session runtime registry the compiler fills with option-bearing
// copies as imports resolve. The core model is single-threaded; the mutex
// only serialises registration against resolution for callers that drive
// the sandbox from multiple goroutines.
type Registry struct {
	mu      sync.Mutex
	modules map[string]*Module
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.modules[name]
	return ok
}

// Register stores m under its name. Overwriting an existing entry is
// rejected.
func (r *Registry) Register(m *Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[m.Name]; ok {
		return sberr.New(sberr.CodeModule, "module %q is already registered", m.Name).WithModule(m.Name)
	}
	r.modules[m.Name] = m
	r.order = append(r.order, m.Name)
	return nil
}

// Resolve returns the module registered under name.
func (r *Registry) Resolve(name string) (*Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[name]
	if !ok {
		return nil, sberr.New(sberr.CodeModule, "module %q not found", name).WithModule(name)
	}
	return m, nil
}

// Remove deletes the entry for name, if any.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[name]; !ok {
		return
	}
	delete(r.modules, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Load registers every module in order, stopping at the first rejection.
func (r *Registry) Load(mods ...*Module) error {
	for _, m := range mods {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Clear empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = make(map[string]*Module)
	r.order = nil
}

// Available compiles every registered module and lists their definitions
// in registration order.
func (r *Registry) Available() ([]Definition, error) {
	r.mu.Lock()
	mods := make([]*Module, 0, len(r.order))
	for _, name := range r.order {
		mods = append(mods, r.modules[name])
	}
	r.mu.Unlock()

	defs := make([]Definition, 0, len(mods))
	for _, m := range mods {
		def, err := m.Definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// ResolveOptions returns the option record registered under the given
// function name or import alias, or nil when no module carries one. The
// uniform names inside the record are the namespaced names of the last
// compilation, which is how a user-level option maps onto a GL uniform.
func (r *Registry) ResolveOptions(funcOrAlias string) map[string]glsl.Option {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.order {
		if set, ok := r.modules[name].options[funcOrAlias]; ok {
			return set
		}
	}
	return nil
}

// AllOptions snapshots every option record keyed by function name or
// alias, in module registration order. The driver uses it to upload option
// defaults after a compile.
func (r *Registry) AllOptions() map[string]map[string]glsl.Option {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]map[string]glsl.Option)
	for _, name := range r.order {
		for key, set := range r.modules[name].options {
			if _, ok := out[key]; !ok {
				out[key] = set
			}
		}
	}
	return out
}

// defaultRegistry is the design-time registry. It is seeded with the
// bundled modules at package load and grows through Define.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide design-time registry.
func DefaultRegistry() *Registry { return defaultRegistry }
