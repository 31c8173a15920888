package glsl

// BuiltinUniforms are available to every shader without declaration and
// are uploaded by the driver each frame. Their names are never namespaced
// by compilation.
var BuiltinUniforms = []Uniform{
	{Variable: Variable{Name: "u_resolution", Type: "vec2"}},
	{Variable: Variable{Name: "u_time", Type: "float"}},
	{Variable: Variable{Name: "u_delta", Type: "float"}},
	{Variable: Variable{Name: "u_mouse", Type: "vec2"}},
	{Variable: Variable{Name: "u_frame", Type: "int"}},
}

var builtinUniformSet = func() map[string]bool {
	m := make(map[string]bool, len(BuiltinUniforms))
	for _, u := range BuiltinUniforms {
		m[u.Name] = true
	}
	return m
}()

// IsBuiltinUniform reports whether name is one of the five built-in
// uniforms.
func IsBuiltinUniform(name string) bool { return builtinUniformSet[name] }

// controlKeywords are identifiers that look like calls when followed by a
// parenthesis but are control flow, not function references.
var controlKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "return": true, "break": true,
	"continue": true, "discard": true,
}

// paramQualifiers are stripped from parameter lists before capturing the
// "type name" pair.
var paramQualifiers = map[string]bool{
	"in": true, "out": true, "inout": true, "const": true,
	"highp": true, "mediump": true, "lowp": true,
}
