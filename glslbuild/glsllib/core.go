package glsllib

import _ "embed"

//go:embed sandbox.glsl
var coreSrc string

// Core is the root "sandbox" module with coordinate and shaping helpers:
//
//	vec2 st(vec2 fragCoord)
//	vec2 centered(vec2 fragCoord)
//	float circle(vec2 p, float radius)
//	float ring(vec2 p, float radius, float thickness)
//	float remap(float v, float lo, float hi)
func Core() Module {
	return Module{Name: "sandbox", Source: coreSrc}
}
