package glsllib

import (
	_ "embed"

	"github.com/rosalana/sandbox/glsl"
)

//go:embed filters.glsl
var filtersSrc string

// Filters is the "sandbox/filters" module. Every filter shares the
// inherited "amount" knob:
//
//	float luminance(vec3 c)
//	vec3 grayscale(vec3 c)
//	vec3 sepia(vec3 c)
//	vec3 invert(vec3 c)
//	vec3 vignette(vec3 c, vec2 uv)
func Filters() Module {
	return Module{Name: "sandbox/filters", Source: filtersSrc, Options: glsl.Options{
		"default": {
			"amount": {Uniform: "u_amount", Default: float32(1)},
		},
	}}
}
