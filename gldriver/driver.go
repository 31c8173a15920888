// Package gldriver is the OpenGL collaborator of the sandbox core: it owns
// the window and GL context, compiles the preprocessed fragment source into
// a fullscreen-quad program, and pushes the built-in and option uniforms
// every frame. Everything GPU-bound sits behind the cgo build tag; without
// cgo every entry point that returns an error reports CONTEXT_ERROR.
package gldriver

// Config describes the window and context to create.
type Config struct {
	Width  int
	Height int
	Title  string
	// Resizable keeps the default GLFW hint when true.
	Resizable bool
}

func (cfg *Config) defaults() {
	if cfg.Width == 0 {
		cfg.Width = 800
	}
	if cfg.Height == 0 {
		cfg.Height = 600
	}
	if cfg.Title == "" {
		cfg.Title = "sandbox"
	}
}

// vertexSource returns the passthrough vertex shader for the given GLSL
// profile (1 or 2). The attribute name a_position is part of the driver
// contract.
func vertexSource(version int) string {
	if version == 2 {
		return `#version 300 es
in vec2 a_position;
void main() {
    gl_Position = vec4(a_position, 0.0, 1.0);
}
`
	}
	return `attribute vec2 a_position;
void main() {
    gl_Position = vec4(a_position, 0.0, 1.0);
}
`
}
