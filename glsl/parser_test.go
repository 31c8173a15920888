package glsl

import (
	"strings"
	"testing"

	"github.com/rosalana/sandbox/sberr"
)

func TestVersion(t *testing.T) {
	p := NewParser("void main() {}")
	if v := p.Version(); v != 1 {
		t.Errorf("want version 1, got %d", v)
	}
	p.SetSource("#version 300 es\nvoid main() {}")
	if v := p.Version(); v != 2 {
		t.Errorf("want version 2, got %d", v)
	}
	p.SetSource("  #version 300 es")
	if v := p.Version(); v != 2 {
		t.Errorf("indented directive: want version 2, got %d", v)
	}
	p.SetSource("// #version 300 es\nvoid main() {}")
	if v := p.Version(); v != 1 {
		t.Errorf("commented directive: want version 1, got %d", v)
	}
}

func TestParseImports(t *testing.T) {
	src := `#import gradient from 'sandbox/colors'
#import effect as soft from "fx"
void main() {}`
	res, err := NewParser(src).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Imports) != 2 {
		t.Fatalf("want 2 imports, got %d", len(res.Imports))
	}
	got := res.Imports[0]
	if got.Name != "gradient" || got.Alias != "gradient" || got.Module != "sandbox/colors" || got.Line != 1 {
		t.Errorf("first import mismatch: %+v", got)
	}
	got = res.Imports[1]
	if got.Name != "effect" || got.Alias != "soft" || got.Module != "fx" || got.Line != 2 {
		t.Errorf("aliased import mismatch: %+v", got)
	}
}

func TestImportDiagnosis(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`@import x from 'm'`, "Invalid prefix"},
		{`import x from 'm'`, "missing '#'"},
		{`#import from 'm'`, "missing 'from'"},
		{`#import`, "missing function name"},
		{`#import x 'm'`, "missing 'from'"},
		{`#import x as from`, "missing"},
		{`#import x from m`, "quoted"},
		{`#import x from 'm"`, "quoted"},
	}
	for _, tc := range cases {
		_, err := NewParser(tc.src + "\nvoid main() {}").Parse()
		if err == nil {
			t.Errorf("%q: want error, got nil", tc.src)
			continue
		}
		if !sberr.IsCode(err, sberr.CodeShader) {
			t.Errorf("%q: want SHADER_ERROR, got %v", tc.src, err)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%q: diagnosis %q does not mention %q", tc.src, err, tc.want)
		}
	}
}

func TestImportDiagnosisLine(t *testing.T) {
	_, err := NewParser("void f() {}\n@import x from 'm'").Parse()
	if err == nil {
		t.Fatal("want error")
	}
	se, ok := err.(*sberr.Error)
	if !ok {
		t.Fatalf("want *sberr.Error, got %T", err)
	}
	if se.Line != 2 {
		t.Errorf("want line 2, got %d", se.Line)
	}
}

func TestDuplicateAlias(t *testing.T) {
	src := `#import a from 'm'
#import b as a from 'n'
void main() {}`
	_, err := NewParser(src).Parse()
	if err == nil || !strings.Contains(err.Error(), "duplicate import alias") {
		t.Fatalf("want duplicate alias fault, got %v", err)
	}
}

func TestParseUniforms(t *testing.T) {
	src := `uniform float u_intensity;
uniform highp vec3 u_colors[2];
uniform sampler2D u_tex;
uniform notatype u_skip;
void main() {}`
	res, err := NewParser(src).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Uniforms) != 3 {
		t.Fatalf("want 3 uniforms, got %d: %+v", len(res.Uniforms), res.Uniforms)
	}
	u := res.Uniforms[1]
	if u.Name != "u_colors" || u.Type != "vec3" || u.ArrayNum != 2 || u.Line != 2 {
		t.Errorf("array uniform mismatch: %+v", u)
	}
	if decl := u.Declaration(); decl != "uniform vec3 u_colors[2];" {
		t.Errorf("bad declaration render: %q", decl)
	}
}

func TestParseFunctions(t *testing.T) {
	src := `uniform float u_k;
float helper(in float x, const highp float y) {
	// comment with { brace
	/* and a } in block */
	return x * y * u_k;
}
vec3 main2(void) {
	if (u_k > 0.0) { return vec3(helper(1.0, 2.0)); }
	return vec3(0);
}
void broken(float x) {
	x = x;
`
	res, err := NewParser(src).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Functions) != 2 {
		t.Fatalf("want 2 functions (unbalanced one dropped), got %d", len(res.Functions))
	}
	h := res.Functions[0]
	if h.Name != "helper" || h.ReturnType != "float" || h.Line != 2 {
		t.Errorf("helper mismatch: %+v", h)
	}
	if len(h.Params) != 2 || h.Params[0] != (Variable{Type: "float", Name: "x"}) || h.Params[1] != (Variable{Type: "float", Name: "y"}) {
		t.Errorf("qualifiers not stripped: %+v", h.Params)
	}
	if !strings.HasPrefix(h.Body, "{") || !strings.HasSuffix(h.Body, "}") {
		t.Errorf("body must include braces: %q", h.Body)
	}
	if !strings.Contains(h.Body, "comment with { brace") {
		t.Errorf("body truncated: %q", h.Body)
	}
	m := res.Functions[1]
	if m.Name != "main2" || len(m.Params) != 0 {
		t.Errorf("main2 mismatch: %+v", m)
	}
}

func TestDependencyScan(t *testing.T) {
	src := `uniform float u_gain;
float helper(float x) { return x; }
float top(float x) {
	if (x > 0.0) { return helper(x) * u_gain; }
	for (int i = 0; i < 2; i++) { x += u_gain; }
	return helper(x);
}`
	res, err := NewParser(src).Parse()
	if err != nil {
		t.Fatal(err)
	}
	top := res.Function("top")
	if top == nil {
		t.Fatal("top not parsed")
	}
	var fnRefs, uRefs int
	for _, d := range top.Dependencies {
		switch {
		case d.Kind == DepFunction && d.Name == "helper":
			fnRefs++
		case d.Kind == DepFunction && (d.Name == "if" || d.Name == "for" || d.Name == "return"):
			t.Errorf("control keyword recorded as dep: %+v", d)
		case d.Kind == DepUniform && d.Name == "u_gain":
			uRefs++
		}
		if top.Body[d.Index:d.Index+len(d.Name)] != d.Name {
			t.Errorf("dep index %d does not point at %q", d.Index, d.Name)
		}
	}
	if fnRefs != 2 {
		t.Errorf("want 2 helper refs, got %d", fnRefs)
	}
	if uRefs != 2 {
		t.Errorf("want 2 u_gain refs, got %d", uRefs)
	}
}

func TestParseMemoised(t *testing.T) {
	p := NewParser("void main() {}")
	first, err := p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	second, _ := p.Parse()
	if first != second {
		t.Error("memoised parse must return the identical result pointer")
	}
	p.SetSource("void main() { }")
	third, _ := p.Parse()
	if third == first {
		t.Error("SetSource must drop the memo")
	}
}

func TestBuiltinUniforms(t *testing.T) {
	for _, u := range BuiltinUniforms {
		if !IsBuiltinUniform(u.Name) {
			t.Errorf("%s not reported as builtin", u.Name)
		}
	}
	if IsBuiltinUniform("u_custom") {
		t.Error("u_custom must not be builtin")
	}
}
