package getconfig

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/Azhovan/getconfig/internal/normalize"
)

// ${self.dotted.path}
var selfRefPattern = regexp.MustCompile(`\$\{self\.([^}]+)\}`)

// ResolveRefs replaces ${self.path} references in tree with values read from root
// and returns tree. A string that is exactly one reference takes a copy of the
// referenced value with its type intact; references embedded in longer strings
// are replaced by the value's string form. Replacement values are not scanned
// again, so a reference to a string that still holds a reference yields that
// string verbatim.
func ResolveRefs(tree, root *Mapping) (*Mapping, error) {
	r := &refResolver{root: root}
	if err := r.resolveMapping(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

type refResolver struct {
	root *Mapping
}

func (r *refResolver) resolveMapping(m *Mapping) error {
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		out, err := r.resolve(v)
		if err != nil {
			return err
		}
		m.Set(key, out)
	}
	return nil
}

func (r *refResolver) resolve(v Value) (Value, error) {
	switch t := v.(type) {
	case *Mapping:
		return t, r.resolveMapping(t)
	case Sequence:
		for i := range t {
			out, err := r.resolve(t[i])
			if err != nil {
				return nil, err
			}
			t[i] = out
		}
		return t, nil
	case Scalar:
		if s, ok := t.V.(string); ok {
			return r.resolveString(s)
		}
	}
	return v, nil
}

func (r *refResolver) resolveString(s string) (Value, error) {
	locs := selfRefPattern.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return Scalar{V: s}, nil
	}

	if len(locs) == 1 && locs[0][0] == 0 && locs[0][1] == len(s) {
		target, err := r.lookup(s[locs[0][2]:locs[0][3]])
		if err != nil {
			return nil, err
		}
		return Clone(target), nil
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[0]])
		target, err := r.lookup(s[loc[2]:loc[3]])
		if err != nil {
			return nil, err
		}
		str, err := stringify(target)
		if err != nil {
			return nil, err
		}
		b.WriteString(str)
		last = loc[1]
	}
	b.WriteString(s[last:])
	return Scalar{V: b.String()}, nil
}

func (r *refResolver) lookup(path string) (Value, error) {
	v, ok := r.root.Lookup(normalize.SplitPath(path)...)
	if !ok {
		return nil, &MissingPropertyError{Path: path}
	}
	return v, nil
}

// stringify renders v for embedding in a larger string.
func stringify(v Value) (string, error) {
	switch t := v.(type) {
	case *Mapping, Sequence:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case Scalar:
		switch s := t.V.(type) {
		case nil:
			return "null", nil
		case time.Time:
			return s.Format(time.RFC3339Nano), nil
		}
		if str, err := cast.ToStringE(t.V); err == nil {
			return str, nil
		}
		return fmt.Sprint(t.V), nil
	}
	return "", fmt.Errorf("getconfig: cannot stringify %T", v)
}
