package getconfig

import (
	"os"
	"regexp"
	"strings"
)

// EnvLookup returns the value of an environment variable and whether it is set.
type EnvLookup func(name string) (string, bool)

// OSEnv reads the process environment.
func OSEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapEnv returns an EnvLookup backed by vars.
func MapEnv(vars map[string]string) EnvLookup {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

var (
	// $NAME, $$NAME, $NAME::type, $NAME::type:arg1:arg2
	placeholderPattern = regexp.MustCompile(`^(\$\$?)([A-Z0-9_]+)(?:::([^\s:]+):?([^\s]+)?)?$`)
	// ${NAME} anywhere in a string
	interpolationPattern = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)
)

type envPlaceholder struct {
	required bool
	name     string
	typeName string
	args     []string
}

func parseEnvPlaceholder(s string) (envPlaceholder, bool) {
	m := placeholderPattern.FindStringSubmatch(s)
	if m == nil {
		return envPlaceholder{}, false
	}
	p := envPlaceholder{
		required: m[1] == "$$",
		name:     m[2],
		typeName: m[3],
	}
	if m[4] != "" {
		p.args = strings.Split(m[4], ":")
	}
	return p, true
}

// ResolveEnv replaces environment placeholders in tree and returns it.
// The tree is modified in place. Keys holding an optional placeholder whose
// variable is unset are removed. A variable set to "" counts as unset.
func ResolveEnv(tree *Mapping, env EnvLookup, reg *Registry) (*Mapping, error) {
	if env == nil {
		env = OSEnv
	}
	if reg == nil {
		reg = NewRegistry()
	}
	r := &envResolver{env: env, reg: reg}
	if err := r.resolveMapping(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

type envResolver struct {
	env EnvLookup
	reg *Registry
}

func (r *envResolver) lookup(name string) (string, bool) {
	v, ok := r.env(name)
	return v, ok && v != ""
}

func (r *envResolver) resolveMapping(m *Mapping) error {
	// Keys() is a snapshot, so deletions below cannot skip a sibling.
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		out, keep, err := r.resolve(v)
		if err != nil {
			return err
		}
		if !keep {
			m.Delete(key)
			continue
		}
		m.Set(key, out)
	}
	return nil
}

func (r *envResolver) resolveSequence(s Sequence) (Sequence, error) {
	out := s[:0]
	for _, v := range s {
		resolved, keep, err := r.resolve(v)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, resolved)
		}
	}
	return out, nil
}

// resolve returns the replacement for v and whether it should be kept.
func (r *envResolver) resolve(v Value) (Value, bool, error) {
	switch t := v.(type) {
	case *Mapping:
		return t, true, r.resolveMapping(t)
	case Sequence:
		s, err := r.resolveSequence(t)
		return s, true, err
	case Scalar:
		if s, ok := t.V.(string); ok {
			return r.resolveString(s)
		}
	}
	return v, true, nil
}

func (r *envResolver) resolveString(s string) (Value, bool, error) {
	if p, ok := parseEnvPlaceholder(s); ok {
		return r.resolvePlaceholder(p)
	}
	if !strings.Contains(s, "${") {
		return Scalar{V: s}, true, nil
	}

	var missing string
	out := interpolationPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		val, ok := r.lookup(name)
		if !ok {
			if missing == "" {
				missing = name
			}
			return match
		}
		return val
	})
	if missing != "" {
		return nil, false, &UnsetEnvVarError{Name: missing}
	}
	return Scalar{V: out}, true, nil
}

func (r *envResolver) resolvePlaceholder(p envPlaceholder) (Value, bool, error) {
	if p.typeName != "" && !r.reg.Has(p.typeName) {
		return nil, false, &InvalidTypeError{Type: p.typeName}
	}

	raw, ok := r.lookup(p.name)
	if !ok {
		if p.required {
			return nil, false, &UnsetEnvVarError{Name: p.name}
		}
		return nil, false, nil
	}

	if p.typeName == "" {
		return Scalar{V: raw}, true, nil
	}

	v, err := r.reg.Invoke(p.typeName, raw, p.args...)
	if err != nil {
		return nil, false, &ConversionError{Name: p.name, Type: p.typeName, Err: err}
	}
	return v, true, nil
}
