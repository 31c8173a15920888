package glslbuild

import "github.com/rosalana/sandbox/glsl"

// Shader is a Compilable whose requirements bag is pre-seeded with the
// five built-in uniforms, so their declarations always survive to the
// compiled output even when the author never references them. The GL
// driver quietly drops locations the GLSL compiler optimised away.
// Shaders host user code only and never contribute functions of their
// own.
type Shader struct {
	Compilable
}

// NewShader returns a shader over the given fragment source.
func NewShader(source string) *Shader {
	s := &Shader{Compilable: makeCompilable(source)}
	s.seed = append([]glsl.Uniform(nil), glsl.BuiltinUniforms...)
	return s
}
