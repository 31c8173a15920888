package glsllib

import (
	_ "embed"

	"github.com/rosalana/sandbox/glsl"
	"github.com/soypat/geometry/ms3"
)

//go:embed colors.glsl
var colorsSrc string

// Colors is the "sandbox/colors" module:
//
//	vec3 gamma2linear(vec3 c)
//	vec3 linear2gamma(vec3 c)
//	vec3 gradient(float t, vec3 a, vec3 b)
//	vec3 hue2rgb(float h)
//	vec3 rainbow(float t)
func Colors() Module {
	return Module{Name: "sandbox/colors", Source: colorsSrc, Options: glsl.Options{
		"gradient": {
			"colors": {Uniform: "u_colors", Default: [2]ms3.Vec{{X: 1, Y: 1, Z: 1}, {}}},
			"gamma":  {Uniform: "u_gamma", Default: float32(2.2)},
		},
		"rainbow": {
			"shift": {Uniform: "u_hueShift", Default: float32(0)},
		},
	}}
}
