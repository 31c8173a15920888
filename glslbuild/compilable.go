// Package glslbuild implements the sandbox compile pipeline: modules wrap
// reusable GLSL units, registries mediate lookup, and Compilable resolves
// #import directives by splicing namespaced copies of imported functions
// and their uniform dependencies into the host shader text.
package glslbuild

import (
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/rosalana/sandbox/glsl"
	"github.com/rosalana/sandbox/sberr"
)

const namespaceAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var collapseNewlinesRE = regexp.MustCompile(`\n{3,}`)

// Compilable resolves the #import directives of one GLSL source. It keeps
// two parsers, one over the original text and one over the compiled text,
// and a requirements bag of uniforms and functions that must appear in the
// output. Module and Shader both build on it.
type Compilable struct {
	original *glsl.Parser
	compiled *glsl.Parser

	design  *Registry
	runtime *Registry

	rng *rand.Rand

	// seed is re-applied to the requirements bag on every (re)compile.
	// Shader uses it to force the built-in uniforms into the output.
	seed []glsl.Uniform

	reqUniforms []glsl.Uniform
	reqIndex    map[string]int
	isCompiled  bool
}

func makeCompilable(source string) Compilable {
	return Compilable{
		original: glsl.NewParser(source),
		compiled: glsl.NewParser(""),
		design:   defaultRegistry,
	}
}

// NewCompilable returns a Compilable over source resolving imports against
// the default design-time registry.
func NewCompilable(source string) *Compilable {
	c := makeCompilable(source)
	return &c
}

// SetRegistries replaces the registries used during compilation: design
// resolves #import directives, runtime receives option-bearing module
// copies. A nil runtime skips the copy step.
func (c *Compilable) SetRegistries(design, runtime *Registry) {
	if design != nil {
		c.design = design
	}
	c.runtime = runtime
}

// SetRandom injects the random source used for namespace suffixes so
// compilations can be made reproducible.
func (c *Compilable) SetRandom(rng *rand.Rand) { c.rng = rng }

// Source returns the original (uncompiled) text.
func (c *Compilable) Source() string { return c.original.Source() }

// SetSource replaces the original text and invalidates both parse memos
// and the compiled result.
func (c *Compilable) SetSource(source string) {
	c.original.SetSource(source)
	c.compiled.SetSource("")
	c.isCompiled = false
}

// Parse exposes the memoised parse of the original text.
func (c *Compilable) Parse() (*glsl.ParseResult, error) { return c.original.Parse() }

// CompiledParse compiles if needed and returns the parse of the compiled
// text.
func (c *Compilable) CompiledParse() (*glsl.ParseResult, error) {
	if _, err := c.Compile(); err != nil {
		return nil, err
	}
	return c.compiled.Parse()
}

// Recompile drops the cached result and compiles again. Namespace
// suffixes are drawn fresh.
func (c *Compilable) Recompile() (string, error) {
	c.isCompiled = false
	c.compiled.SetSource("")
	return c.Compile()
}

// Compile resolves every import and returns the final GLSL text. The
// result is cached; repeated calls return the same string until Recompile
// or SetSource. Faults are never caught here and propagate to the caller.
func (c *Compilable) Compile() (string, error) {
	if c.isCompiled {
		return c.compiled.Source(), nil
	}
	res, err := c.original.Parse()
	if err != nil {
		return "", err
	}
	c.resetRequirements()

	var emitted []glsl.Function
	for _, imp := range res.Imports {
		mod, err := c.design.Resolve(imp.Module)
		if err != nil {
			return "", err
		}
		ext, err := mod.Extract(imp.Name)
		if err != nil {
			return "", err
		}
		cp, err := c.runtimeCopy(mod)
		if err != nil {
			return "", err
		}

		unique := imp.Alias + "_" + c.suffix()
		helpers := make(map[string]bool, len(ext.Dependencies.Functions))
		for _, fn := range ext.Dependencies.Functions {
			helpers[fn.Name] = true
		}
		renames := make(map[string]string, len(ext.Dependencies.Uniforms))
		for _, u := range ext.Dependencies.Uniforms {
			if glsl.IsBuiltinUniform(u.Name) {
				continue
			}
			renames[u.Name] = unique + "_" + u.Name
		}

		// Helpers precede the renamed entry function so every definition
		// lands before its references.
		for _, fn := range ext.Dependencies.Functions {
			rw := rewriteFunction(fn, unique, helpers, renames)
			rw.Name = unique + "_" + fn.Name
			emitted = append(emitted, rw)
		}
		entry := rewriteFunction(ext.Function, unique, helpers, renames)
		entry.Name = imp.Alias
		emitted = append(emitted, entry)

		for _, u := range ext.Dependencies.Uniforms {
			if glsl.IsBuiltinUniform(u.Name) {
				continue
			}
			nu := u
			nu.Name = renames[u.Name]
			if err := c.requireUniform(nu); err != nil {
				return "", err
			}
		}
		if cp != nil {
			rewriteOptions(cp, mod, imp, renames)
		}
	}

	out, err := c.buildOutput(res, emitted)
	if err != nil {
		return "", err
	}
	c.compiled.SetSource(out)
	c.isCompiled = true
	return out, nil
}

func (c *Compilable) resetRequirements() {
	c.reqUniforms = append([]glsl.Uniform(nil), c.seed...)
	c.reqIndex = make(map[string]int, len(c.seed))
	for i, u := range c.reqUniforms {
		c.reqIndex[u.Name] = i
	}
}

func (c *Compilable) requireUniform(u glsl.Uniform) error {
	if i, ok := c.reqIndex[u.Name]; ok {
		have := c.reqUniforms[i]
		if have.Type != u.Type {
			return sberr.New(sberr.CodeShader,
				"conflicting requirements for uniform %q", u.Name).WithTypes(have.Type, u.Type)
		}
		return nil
	}
	c.reqIndex[u.Name] = len(c.reqUniforms)
	c.reqUniforms = append(c.reqUniforms, u)
	return nil
}

func (c *Compilable) runtimeCopy(mod *Module) (*Module, error) {
	if c.runtime == nil {
		return nil, nil
	}
	if c.runtime.Has(mod.Name) {
		return c.runtime.Resolve(mod.Name)
	}
	cp := mod.Copy()
	if err := c.runtime.Register(cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (c *Compilable) suffix() string {
	var b [6]byte
	for i := range b {
		if c.rng != nil {
			b[i] = namespaceAlphabet[c.rng.Intn(len(namespaceAlphabet))]
		} else {
			b[i] = namespaceAlphabet[rand.Intn(len(namespaceAlphabet))]
		}
	}
	return string(b[:])
}

// rewriteFunction applies the recorded references of fn from the highest
// body offset downward so earlier indices stay valid: uniform references
// take their namespaced name, helper references take the unique prefix,
// and anything unresolved is left for the GL compiler (assumed built-in).
func rewriteFunction(fn glsl.Function, unique string, helpers map[string]bool, renames map[string]string) glsl.Function {
	deps := append([]glsl.Dep(nil), fn.Dependencies...)
	sort.Slice(deps, func(i, j int) bool { return deps[i].Index > deps[j].Index })
	body := fn.Body
	for _, d := range deps {
		var repl string
		switch d.Kind {
		case glsl.DepUniform:
			nn, ok := renames[d.Name]
			if !ok {
				continue
			}
			repl = nn
		case glsl.DepFunction:
			if !helpers[d.Name] {
				continue
			}
			repl = unique + "_" + d.Name
		}
		body = body[:d.Index] + repl + body[d.Index+len(d.Name):]
	}
	out := fn
	out.Body = body
	out.Dependencies = nil
	return out
}

// rewriteOptions rebuilds the imported function's option entry on the
// runtime copy: option uniforms that were namespaced point at their new
// names and the entry moves under the alias key. The first copy of a
// module owns the map; later aliases only add their own entries.
func rewriteOptions(cp, mod *Module, imp glsl.Import, renames map[string]string) {
	base := mod.options[imp.Name]
	if len(base) == 0 {
		return
	}
	entry := make(map[string]glsl.Option, len(base))
	for k, o := range base {
		if nn, ok := renames[o.Uniform]; ok {
			o.Uniform = nn
		}
		entry[k] = o
	}
	if imp.Alias != imp.Name {
		delete(cp.options, imp.Name)
	}
	cp.options[imp.Alias] = entry
}

// buildOutput splices the requirements into the original text: import
// lines are stripped, missing uniform declarations are inserted after the
// last existing one (or after the preamble), and the rewritten functions
// land immediately before the first declared function.
func (c *Compilable) buildOutput(res *glsl.ParseResult, emitted []glsl.Function) (string, error) {
	lines := strings.Split(c.original.Source(), "\n")

	if len(res.Imports) > 0 {
		drop := make(map[int]bool, len(res.Imports)*2)
		for _, imp := range res.Imports {
			i := imp.Line - 1
			drop[i] = true
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "" {
				drop[i+1] = true
			}
		}
		kept := lines[:0:0]
		for i, l := range lines {
			if !drop[i] {
				kept = append(kept, l)
			}
		}
		lines = kept
	}

	stripped, err := glsl.NewParser(strings.Join(lines, "\n")).Parse()
	if err != nil {
		return "", err
	}

	var missing []glsl.Uniform
	for _, u := range c.reqUniforms {
		if ex := stripped.Uniform(u.Name); ex != nil {
			if ex.Type != u.Type {
				return "", sberr.New(sberr.CodeShader,
					"uniform %q declared with conflicting type", u.Name).
					WithTypes(u.Type, ex.Type).WithLine(ex.Line)
			}
			continue
		}
		missing = append(missing, u)
	}
	if len(missing) > 0 {
		at := uniformInsertAt(stripped, lines)
		block := make([]string, 0, len(missing)+1)
		for _, u := range missing {
			block = append(block, u.Declaration())
		}
		block = append(block, "")
		lines = insertLines(lines, at, block)
	}

	if len(emitted) > 0 {
		patched, err := glsl.NewParser(strings.Join(lines, "\n")).Parse()
		if err != nil {
			return "", err
		}
		if len(patched.Functions) == 0 {
			return "", sberr.New(sberr.CodeShader, "shader source declares no function to insert imports before")
		}
		at := patched.Functions[0].Line - 1
		var block []string
		for _, fn := range emitted {
			block = append(block, strings.Split(fn.Render(), "\n")...)
			block = append(block, "")
		}
		lines = insertLines(lines, at, block)
	} else if len(res.Functions) == 0 {
		return "", sberr.New(sberr.CodeShader, "shader source declares no function")
	}

	out := strings.Join(lines, "\n")
	if len(res.Imports) > 0 {
		out = collapseNewlinesRE.ReplaceAllString(out, "\n\n")
	}
	return out, nil
}

// uniformInsertAt picks the line index to insert declarations at: after
// the last existing uniform declaration, or past the #version directive,
// precision qualifiers and leading blank or comment lines.
func uniformInsertAt(res *glsl.ParseResult, lines []string) int {
	last := -1
	for _, u := range res.Uniforms {
		if u.Line-1 > last {
			last = u.Line - 1
		}
	}
	if last >= 0 {
		return last + 1
	}
	inBlock := false
	for i, l := range lines {
		t := strings.TrimSpace(l)
		switch {
		case inBlock:
			if strings.Contains(t, "*/") {
				inBlock = false
			}
		case t == "":
		case strings.HasPrefix(t, "#version"):
		case strings.HasPrefix(t, "precision"):
		case strings.HasPrefix(t, "//"):
		case strings.HasPrefix(t, "/*"):
			inBlock = !strings.Contains(t, "*/")
		default:
			return i
		}
	}
	return len(lines)
}

func insertLines(lines []string, at int, block []string) []string {
	if at > len(lines) {
		at = len(lines)
	}
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	out = append(out, lines[at:]...)
	return out
}
