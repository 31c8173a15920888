// Package glsl scans fragment shader text for the shapes the sandbox
// compiler cares about: the version directive, #import directives, uniform
// declarations and function definitions with their intra-body references.
// It is not a full GLSL grammar; anything outside those shapes passes
// through untouched.
package glsl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rosalana/sandbox/sberr"
)

var (
	versionRE = regexp.MustCompile(`(?m)^[ \t]*#version[ \t]+300[ \t]+es\b`)
	uniformRE = regexp.MustCompile(`(?m)^[ \t]*uniform[ \t]+(?:(?:highp|mediump|lowp)[ \t]+)?(\w+)[ \t]+([A-Za-z_]\w*)[ \t]*(?:\[[ \t]*(\d+)[ \t]*\])?[ \t]*;`)
	funcRE    = regexp.MustCompile(`(?m)^[ \t]*(` + typeAlternation() + `)[ \t]+([A-Za-z_]\w*)[ \t]*\(([^)]*)\)[ \t]*\{`)
	identRE   = regexp.MustCompile(`[A-Za-z_]\w*`)

	// Loose forms that flag a line as an import attempt even when the
	// strict directive does not match.
	importCandidateRE = regexp.MustCompile(`^([^\w\s])?import\b`)

	importNameRE  = regexp.MustCompile(`^[ \t]+([A-Za-z_]\w*)`)
	importAsRE    = regexp.MustCompile(`^[ \t]+as\b`)
	importFromRE  = regexp.MustCompile(`^[ \t]+from\b`)
	importQuoteRE = regexp.MustCompile(`^[ \t]+(['"])([\w./-]+)(['"])`)
)

// Parser extracts a [ParseResult] from one GLSL source string. The result
// is memoised: repeated Parse calls return the same pointer until
// SetSource replaces the text.
type Parser struct {
	source string
	memo   *ParseResult
	err    error
	done   bool
}

// NewParser returns a parser over source.
func NewParser(source string) *Parser {
	return &Parser{source: source}
}

// Source returns the current source text.
func (p *Parser) Source() string { return p.source }

// SetSource replaces the source and drops the memoised parse.
func (p *Parser) SetSource(source string) {
	p.source = source
	p.memo = nil
	p.err = nil
	p.done = false
}

// Version reports the GLSL profile of the source: 2 when a line-anchored
// "#version 300 es" directive is present, 1 otherwise. It never runs a
// full parse.
func (p *Parser) Version() int {
	if versionRE.MatchString(p.source) {
		return 2
	}
	return 1
}

// Parse scans the source for imports, uniforms and functions. The uniform
// list is gathered before functions because the dependency scan inside
// function bodies needs the declared uniform names.
func (p *Parser) Parse() (*ParseResult, error) {
	if p.done {
		return p.memo, p.err
	}
	p.done = true
	res := &ParseResult{Version: p.Version()}
	imports, err := p.parseImports()
	if err != nil {
		p.err = err
		return nil, err
	}
	res.Imports = imports
	res.Uniforms = p.parseUniforms()
	res.Functions = p.parseFunctions(res.Uniforms)
	p.memo = res
	return res, nil
}

func (p *Parser) parseImports() ([]Import, error) {
	var imports []Import
	seen := make(map[string]int)
	for lineNum, line := range splitLines(p.source) {
		trimmed := strings.TrimLeft(line, " \t")
		m := importCandidateRE.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		n := lineNum + 1
		imp, err := parseImportLine(trimmed, m[1], n)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[imp.Alias]; dup {
			return nil, sberr.New(sberr.CodeShader,
				"duplicate import alias %q (first used on line %d)", imp.Alias, prev).WithLine(n)
		}
		seen[imp.Alias] = n
		imports = append(imports, imp)
	}
	return imports, nil
}

// parseImportLine validates one candidate import line against the strict
// form and produces a specific diagnosis when it deviates.
func parseImportLine(trimmed, prefix string, line int) (Import, error) {
	fail := func(format string, args ...any) (Import, error) {
		return Import{}, sberr.New(sberr.CodeShader, format, args...).WithLine(line)
	}
	switch prefix {
	case "":
		return fail("import directive missing '#' prefix")
	case "#":
	default:
		return fail("Invalid prefix '%s' in import directive, expected '#'", prefix)
	}
	rest := trimmed[len("#import"):]

	nm := importNameRE.FindStringSubmatch(rest)
	if nm == nil {
		return fail("import directive missing function name")
	}
	name := nm[1]
	alias := name
	rest = rest[len(nm[0]):]

	if as := importAsRE.FindString(rest); as != "" {
		rest = rest[len(as):]
		am := importNameRE.FindStringSubmatch(" " + rest)
		if am == nil {
			return fail("import directive missing alias after 'as'")
		}
		alias = am[1]
		rest = rest[len(am[0])-1:]
	}

	from := importFromRE.FindString(rest)
	if from == "" {
		return fail("import directive missing 'from'")
	}
	rest = rest[len(from):]

	qm := importQuoteRE.FindStringSubmatch(rest)
	if qm == nil || qm[1] != qm[3] {
		return fail("import module path must be quoted with matching ' or \"")
	}
	rest = strings.TrimRight(rest[len(qm[0]):], " \t\r;")
	if rest != "" {
		return fail("malformed import directive: unexpected %q", rest)
	}
	return Import{Name: name, Alias: alias, Module: qm[2], Line: line}, nil
}

func (p *Parser) parseUniforms() []Uniform {
	var uniforms []Uniform
	for _, m := range uniformRE.FindAllStringSubmatchIndex(p.source, -1) {
		typ := p.source[m[2]:m[3]]
		if !IsType(typ) {
			continue
		}
		u := Uniform{
			Variable: Variable{Name: p.source[m[4]:m[5]], Type: typ},
			Line:     lineOf(p.source, m[0]),
		}
		if m[6] >= 0 {
			u.ArrayNum, _ = strconv.Atoi(p.source[m[6]:m[7]])
		}
		uniforms = append(uniforms, u)
	}
	return uniforms
}

func (p *Parser) parseFunctions(uniforms []Uniform) []Function {
	names := make(map[string]bool, len(uniforms))
	for _, u := range uniforms {
		names[u.Name] = true
	}
	var funcs []Function
	bodyEnd := -1
	for _, m := range funcRE.FindAllStringSubmatchIndex(p.source, -1) {
		if m[0] < bodyEnd {
			// Opening matched inside a previous function body.
			continue
		}
		open := m[1] - 1 // the '{' terminating the match
		close := matchBrace(p.source, open)
		if close < 0 {
			// Unbalanced body: the function is simply not emitted.
			continue
		}
		bodyEnd = close + 1
		body := p.source[open : close+1]
		fn := Function{
			Name:         p.source[m[4]:m[5]],
			ReturnType:   p.source[m[2]:m[3]],
			Params:       parseParams(p.source[m[6]:m[7]]),
			Body:         body,
			Dependencies: scanDeps(body, names),
			Line:         lineOf(p.source, m[0]),
		}
		funcs = append(funcs, fn)
	}
	return funcs
}

// parseParams splits a raw parameter list, strips qualifiers and captures
// the remaining "type name" pairs.
func parseParams(raw string) []Variable {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "void" {
		return nil
	}
	var params []Variable
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Fields(part)
		kept := fields[:0]
		for _, f := range fields {
			if !paramQualifiers[f] {
				kept = append(kept, f)
			}
		}
		if len(kept) < 2 {
			continue
		}
		params = append(params, Variable{Type: kept[0], Name: kept[1]})
	}
	return params
}

// scanDeps records every reference inside body: identifiers followed by a
// parenthesis are function references unless they are control flow;
// identifiers naming a declared uniform are uniform references. Each
// occurrence keeps its character offset so rewrites can be applied from
// the highest index downward.
func scanDeps(body string, uniforms map[string]bool) []Dep {
	var deps []Dep
	for _, m := range identRE.FindAllStringIndex(body, -1) {
		name := body[m[0]:m[1]]
		rest := body[m[1]:]
		trimmed := strings.TrimLeft(rest, " \t")
		if strings.HasPrefix(trimmed, "(") {
			if controlKeywords[name] {
				continue
			}
			deps = append(deps, Dep{Kind: DepFunction, Name: name, Index: m[0]})
			continue
		}
		if uniforms[name] {
			deps = append(deps, Dep{Kind: DepUniform, Name: name, Index: m[0]})
		}
	}
	return deps
}

// matchBrace returns the index of the brace balancing the one at open,
// skipping line comments, block comments and double-quoted runs. Returns
// -1 when the body never closes.
func matchBrace(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		case '/':
			if i+1 < len(src) {
				switch src[i+1] {
				case '/':
					for i < len(src) && src[i] != '\n' {
						i++
					}
				case '*':
					i += 2
					for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
						i++
					}
					i++
				}
			}
		case '"':
			for i++; i < len(src) && src[i] != '"'; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		}
	}
	return -1
}

func splitLines(src string) []string {
	return strings.Split(src, "\n")
}

func lineOf(src string, offset int) int {
	return strings.Count(src[:offset], "\n") + 1
}
