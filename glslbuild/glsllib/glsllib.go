// Package glsllib bundles the GLSL modules shipped with the sandbox. Each
// source is embedded verbatim; option tables link the user-facing knobs to
// the uniforms the functions read.
package glsllib

import "github.com/rosalana/sandbox/glsl"

// Module is one bundled GLSL unit ready for registration.
type Module struct {
	Name    string
	Source  string
	Options glsl.Options
}

// Builtins returns the bundled modules in registration order.
func Builtins() []Module {
	return []Module{
		Core(),
		Colors(),
		Effects(),
		Filters(),
	}
}
