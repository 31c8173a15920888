package glsllib_test

import (
	"testing"

	"github.com/rosalana/sandbox/glsl"
	"github.com/rosalana/sandbox/glslbuild/glsllib"
)

// Every bundled source must parse cleanly and every option must point at
// a uniform the source actually declares.
func TestBuiltinsParse(t *testing.T) {
	mods := glsllib.Builtins()
	if len(mods) != 4 {
		t.Fatalf("want 4 bundled modules, got %d", len(mods))
	}
	for _, m := range mods {
		res, err := glsl.NewParser(m.Source).Parse()
		if err != nil {
			t.Errorf("%s: %v", m.Name, err)
			continue
		}
		if len(res.Imports) != 0 {
			t.Errorf("%s: bundled modules must not import", m.Name)
		}
		if len(res.Functions) == 0 {
			t.Errorf("%s: no functions parsed", m.Name)
		}
		for fnName, set := range m.Options {
			if fnName != "default" && res.Function(fnName) == nil {
				t.Errorf("%s: options for unknown function %q", m.Name, fnName)
			}
			for optName, opt := range set {
				if res.Uniform(opt.Uniform) == nil {
					t.Errorf("%s: option %s.%s points at undeclared uniform %q",
						m.Name, fnName, optName, opt.Uniform)
				}
			}
		}
	}
}

func TestEffectsCallChain(t *testing.T) {
	var effects glsllib.Module
	for _, m := range glsllib.Builtins() {
		if m.Name == "sandbox/effects" {
			effects = m
		}
	}
	res, err := glsl.NewParser(effects.Source).Parse()
	if err != nil {
		t.Fatal(err)
	}
	fbm := res.Function("fbm")
	if fbm == nil {
		t.Fatal("fbm missing")
	}
	callsNoise := false
	for _, d := range fbm.Dependencies {
		if d.Kind == glsl.DepFunction && d.Name == "noise" {
			callsNoise = true
		}
	}
	if !callsNoise {
		t.Error("fbm must call noise for the tree-shaking chain")
	}
	noise := res.Function("noise")
	callsHash := false
	for _, d := range noise.Dependencies {
		if d.Kind == glsl.DepFunction && d.Name == "hash" {
			callsHash = true
		}
	}
	if !callsHash {
		t.Error("noise must call hash")
	}
}
