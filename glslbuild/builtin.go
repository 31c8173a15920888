package glslbuild

import "github.com/rosalana/sandbox/glslbuild/glsllib"

// The design-time registry is seeded once at load. Bundled modules bypass
// Define because their names live inside the reserved namespace.
func init() {
	for _, b := range glsllib.Builtins() {
		m, err := NewModule(b.Name, b.Source, b.Options)
		if err != nil {
			panic("glslbuild: bundled module " + b.Name + ": " + err.Error())
		}
		if err := defaultRegistry.Register(m); err != nil {
			panic("glslbuild: bundled module " + b.Name + ": " + err.Error())
		}
	}
}
