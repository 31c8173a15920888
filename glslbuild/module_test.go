package glslbuild

import (
	"strings"
	"testing"

	"github.com/rosalana/sandbox/glsl"
	"github.com/rosalana/sandbox/sberr"
)

const toolboxSrc = `uniform float u_gain;
uniform float u_bias;

float a(float x) {
	return x + u_gain;
}

float b(float x) {
	return a(x) * 2.0;
}

float c(float x) {
	return b(x) + a(x);
}

float unrelated(float x) {
	return x + u_bias;
}`

func TestExtractClosure(t *testing.T) {
	m := mustModule(t, "toolbox", toolboxSrc, nil)
	ext, err := m.Extract("c")
	if err != nil {
		t.Fatal(err)
	}
	if ext.Function.Name != "c" {
		t.Fatalf("want function c, got %q", ext.Function.Name)
	}
	var names []string
	for _, fn := range ext.Dependencies.Functions {
		names = append(names, fn.Name)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("want helpers [a b] in declaration order, got %v", names)
	}
	if len(ext.Dependencies.Uniforms) != 1 || ext.Dependencies.Uniforms[0].Name != "u_gain" {
		t.Errorf("want uniforms [u_gain], got %+v", ext.Dependencies.Uniforms)
	}
}

func TestExtractCycleTerminates(t *testing.T) {
	m := mustModule(t, "cyclic", `float ping(float x) {
	return pong(x) + 1.0;
}

float pong(float x) {
	return ping(x) - 1.0;
}`, nil)
	ext, err := m.Extract("ping")
	if err != nil {
		t.Fatal(err)
	}
	if len(ext.Dependencies.Functions) != 1 || ext.Dependencies.Functions[0].Name != "pong" {
		t.Errorf("want helpers [pong], got %+v", ext.Dependencies.Functions)
	}
}

func TestExtractRejectsReservedNames(t *testing.T) {
	m := mustModule(t, "r", "void main() { }\nfloat f(float x) { return x; }", nil)
	for _, name := range []string{"main", "default"} {
		_, err := m.Extract(name)
		if err == nil || !sberr.IsCode(err, sberr.CodeShader) {
			t.Errorf("Extract(%q): want SHADER_ERROR, got %v", name, err)
		}
	}
}

func TestExtractMethodNotFound(t *testing.T) {
	m := mustModule(t, "r2", "float f(float x) { return x; }", nil)
	_, err := m.Extract("missing")
	if err == nil || !sberr.IsCode(err, sberr.CodeModule) {
		t.Fatalf("want MODULE_ERROR, got %v", err)
	}
	se := err.(*sberr.Error)
	if se.Module != "r2" || se.Function != "missing" {
		t.Errorf("error context incomplete: %+v", se)
	}
}

func TestOptionsDefaultFolding(t *testing.T) {
	m := mustModule(t, "folded", `uniform float u_k;
uniform float u_s;

float f(float x) { return x * u_k; }

float g(float x) { return x + u_s; }

void main() { }`, glsl.Options{
		"default": {"k": {Uniform: "u_k", Default: float32(1)}},
		"g":       {"s": {Uniform: "u_s"}},
	})
	opts := m.Options()
	if _, ok := opts["default"]; ok {
		t.Error("default key must be folded away")
	}
	if _, ok := opts["main"]; ok {
		t.Error("main must not inherit defaults")
	}
	f := opts["f"]
	if f["k"].Uniform != "u_k" {
		t.Errorf("f did not inherit default options: %+v", f)
	}
	g := opts["g"]
	if g["k"].Uniform != "u_k" || g["s"].Uniform != "u_s" {
		t.Errorf("g must carry inherited and own options: %+v", g)
	}
}

func TestOptionsOverrideWinsOverDefault(t *testing.T) {
	m := mustModule(t, "ov", "uniform float u_a;\nuniform float u_b;\nfloat f(float x) { return x * u_a + u_b; }", glsl.Options{
		"default": {"knob": {Uniform: "u_a"}},
		"f":       {"knob": {Uniform: "u_b"}},
	})
	if got := m.Options()["f"]["knob"].Uniform; got != "u_b" {
		t.Errorf("per-function override lost: %q", got)
	}
}

func TestModuleCopyIndependence(t *testing.T) {
	m := mustModule(t, "cp", "uniform float u_x;\nfloat f(float x) { return x * u_x; }", glsl.Options{
		"f": {"x": {Uniform: "u_x"}},
	})
	cp := m.Copy()
	cp.options["f"]["x"] = glsl.Option{Uniform: "renamed"}
	if m.options["f"]["x"].Uniform != "u_x" {
		t.Error("copy shares option storage with the original")
	}
	if cp.Source() != m.Source() {
		t.Error("copy must share the source text")
	}
}

func TestModuleDefinition(t *testing.T) {
	m := mustModule(t, "def", `uniform float u_x;

float f(float x) { return x * u_x; }

void main() { }`, nil)
	def, err := m.Definition()
	if err != nil {
		t.Fatal(err)
	}
	if len(def.Methods) != 1 || def.Methods[0] != "f" {
		t.Errorf("methods must exclude main: %v", def.Methods)
	}
	if len(def.Uniforms) != 1 || def.Uniforms[0].Name != "u_x" {
		t.Errorf("uniform list wrong: %+v", def.Uniforms)
	}
}

func TestDefineRejectsReservedAndDuplicate(t *testing.T) {
	for _, name := range []string{"sandbox", "sandbox/custom"} {
		_, err := Define(name, "float f(float x) { return x; }", nil)
		if err == nil || !sberr.IsCode(err, sberr.CodeModule) {
			t.Errorf("Define(%q): want MODULE_ERROR, got %v", name, err)
		}
	}
	if _, err := Define("duptest", "float f(float x) { return x; }", nil); err != nil {
		t.Fatal(err)
	}
	_, err := Define("duptest", "float g(float x) { return x; }", nil)
	if err == nil || !strings.Contains(err.Error(), "already defined") {
		t.Errorf("want redefinition fault, got %v", err)
	}
}

func TestDefaultRegistrySeededWithBuiltins(t *testing.T) {
	for _, name := range []string{"sandbox", "sandbox/colors", "sandbox/effects", "sandbox/filters"} {
		if !DefaultRegistry().Has(name) {
			t.Errorf("builtin module %q not registered", name)
		}
	}
	m, err := DefaultRegistry().Resolve("sandbox/effects")
	if err != nil {
		t.Fatal(err)
	}
	def, err := m.Definition()
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(def.Methods, " ")
	for _, want := range []string{"hash", "noise", "fbm", "turbulence"} {
		if !strings.Contains(joined, want) {
			t.Errorf("effects module missing %s: %v", want, def.Methods)
		}
	}
}
