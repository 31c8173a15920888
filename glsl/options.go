package glsl

// Option maps a user-facing knob to the GLSL uniform backing it. Default,
// when non-nil, is uploaded by the driver until the user overrides the
// option.
type Option struct {
	Uniform string
	Default any
}

// Options maps function names to their option sets. The reserved top-level
// key "default" denotes options inherited by every function that does not
// override them; it is folded away when a module is constructed.
type Options map[string]map[string]Option

// Clone returns a deep copy. Option values are copied by value; Default
// payloads are shared, which is safe because defaults are never mutated.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for fn, set := range o {
		out[fn] = cloneOptionSet(set)
	}
	return out
}

func cloneOptionSet(set map[string]Option) map[string]Option {
	cp := make(map[string]Option, len(set))
	for k, v := range set {
		cp[k] = v
	}
	return cp
}
