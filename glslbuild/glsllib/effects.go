package glsllib

import (
	_ "embed"

	"github.com/rosalana/sandbox/glsl"
	"github.com/soypat/geometry/ms2"
)

//go:embed effects.glsl
var effectsSrc string

// Effects is the "sandbox/effects" module. fbm and turbulence build on
// noise, which builds on hash:
//
//	float hash(vec2 p)
//	float noise(vec2 p)
//	float fbm(vec2 p)
//	float turbulence(vec2 p)
//	float pulse(float speed)
func Effects() Module {
	return Module{Name: "sandbox/effects", Source: effectsSrc, Options: glsl.Options{
		"default": {
			"intensity": {Uniform: "u_intensity", Default: float32(1)},
		},
		"fbm": {
			"scale": {Uniform: "u_scale", Default: ms2.Vec{X: 3, Y: 3}},
		},
		"turbulence": {
			"scale": {Uniform: "u_scale", Default: ms2.Vec{X: 3, Y: 3}},
		},
	}}
}
