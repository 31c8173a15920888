package glslbuild

import (
	"sort"
	"strings"

	"github.com/rosalana/sandbox/glsl"
	"github.com/rosalana/sandbox/sberr"
)

// reservedPrefix guards the bundled module namespace against user
// definitions.
const reservedPrefix = "sandbox"

// Module is a registered GLSL unit: a Compilable over its source plus the
// option metadata linking user knobs to uniforms. Extract pulls a single
// function together with the transitive closure of helpers and uniforms it
// needs.
type Module struct {
	Compilable
	Name string

	options glsl.Options
}

// NewModule parses source, folds the reserved "default" option set into
// every parsed function, and returns the module. The module is not
// registered anywhere; use Define for that.
func NewModule(name, source string, options glsl.Options) (*Module, error) {
	m := &Module{Compilable: makeCompilable(source), Name: name}
	res, err := m.original.Parse()
	if err != nil {
		return nil, err
	}
	m.options = normalizeOptions(options, res)
	return m, nil
}

// Define creates a module and registers it in the default design-time
// registry. Names inside the bundled namespace and redefinitions are
// rejected.
func Define(name, source string, options glsl.Options) (*Module, error) {
	if name == reservedPrefix || strings.HasPrefix(name, reservedPrefix+"/") {
		return nil, sberr.New(sberr.CodeModule, "module name %q is reserved", name).WithModule(name)
	}
	if defaultRegistry.Has(name) {
		return nil, sberr.New(sberr.CodeModule, "module %q is already defined", name).WithModule(name)
	}
	m, err := NewModule(name, source, options)
	if err != nil {
		return nil, err
	}
	if err := defaultRegistry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// normalizeOptions folds the reserved "default" entry into every function
// of the parsed source except main and default itself. Per-function
// entries win over inherited keys.
func normalizeOptions(options glsl.Options, res *glsl.ParseResult) glsl.Options {
	out := options.Clone()
	if out == nil {
		return glsl.Options{}
	}
	def, ok := out["default"]
	if !ok {
		return out
	}
	delete(out, "default")
	for _, fn := range res.Functions {
		if fn.Name == "main" || fn.Name == "default" {
			continue
		}
		merged := make(map[string]glsl.Option, len(def))
		for k, o := range def {
			merged[k] = o
		}
		for k, o := range out[fn.Name] {
			merged[k] = o
		}
		out[fn.Name] = merged
	}
	return out
}

// Options returns the module's option table. The map is live; callers
// outside the compile pipeline must not mutate it.
func (m *Module) Options() glsl.Options { return m.options }

// Copy returns a module sharing the same source text with an independent
// deep copy of the options. Compilation state is not carried over.
func (m *Module) Copy() *Module {
	cp := &Module{
		Compilable: makeCompilable(m.original.Source()),
		Name:       m.Name,
		options:    m.options.Clone(),
	}
	cp.design = m.design
	return cp
}

// Definition describes a compiled module to callers that list what is
// importable.
type Definition struct {
	Name     string
	Methods  []string
	Uniforms []glsl.Uniform
	Options  glsl.Options
}

// Definition compiles the module and reports its importable functions and
// declared uniforms. main and default never appear in Methods.
func (m *Module) Definition() (Definition, error) {
	res, err := m.CompiledParse()
	if err != nil {
		return Definition{}, err
	}
	def := Definition{Name: m.Name, Uniforms: res.Uniforms, Options: m.options}
	for _, fn := range res.Functions {
		if fn.Name == "main" || fn.Name == "default" {
			continue
		}
		def.Methods = append(def.Methods, fn.Name)
	}
	return def, nil
}

// Dependencies is the bag of helper functions and uniforms an extracted
// function transitively needs.
type Dependencies struct {
	Functions []glsl.Function
	Uniforms  []glsl.Uniform
}

// Extraction is the result of pulling one function out of a module.
type Extraction struct {
	Function     glsl.Function
	Dependencies Dependencies
}

// Extract compiles the module and returns the named function with the
// transitive closure of helpers and uniforms reachable from it. Function
// references that do not resolve to a parsed function are assumed to be
// GLSL built-ins and skipped; cycles terminate via the visited set. The
// returned lists are in declaration order, which keeps every helper
// definition ahead of its uses when spliced into a shader.
func (m *Module) Extract(name string) (Extraction, error) {
	if name == "main" || name == "default" {
		return Extraction{}, sberr.New(sberr.CodeShader,
			"function %q cannot be imported", name).WithModule(m.Name).WithFunction(name)
	}
	res, err := m.CompiledParse()
	if err != nil {
		return Extraction{}, err
	}
	fn := res.Function(name)
	if fn == nil {
		return Extraction{}, sberr.New(sberr.CodeModule,
			"method %q not found in module", name).WithModule(m.Name).WithFunction(name)
	}

	visited := map[string]bool{name: true}
	uniSeen := make(map[string]bool)
	var deps Dependencies
	var walk func(f *glsl.Function)
	walk = func(f *glsl.Function) {
		for _, d := range f.Dependencies {
			switch d.Kind {
			case glsl.DepFunction:
				if visited[d.Name] {
					continue
				}
				dep := res.Function(d.Name)
				if dep == nil {
					continue
				}
				visited[d.Name] = true
				walk(dep)
				deps.Functions = append(deps.Functions, *dep)
			case glsl.DepUniform:
				if uniSeen[d.Name] {
					continue
				}
				u := res.Uniform(d.Name)
				if u == nil {
					continue
				}
				uniSeen[d.Name] = true
				deps.Uniforms = append(deps.Uniforms, *u)
			}
		}
	}
	walk(fn)
	sort.Slice(deps.Functions, func(i, j int) bool { return deps.Functions[i].Line < deps.Functions[j].Line })
	sort.Slice(deps.Uniforms, func(i, j int) bool { return deps.Uniforms[i].Line < deps.Uniforms[j].Line })
	return Extraction{Function: *fn, Dependencies: deps}, nil
}
