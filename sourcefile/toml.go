package sourcefile

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Azhovan/getconfig"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// ParseTOML decodes a TOML document into a mapping that keeps keys in the
// order they first appear in the document. Values carry the types go-toml
// decodes them to (int64, float64, bool, string, time types).
func ParseTOML(data []byte) (*getconfig.Mapping, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	order, err := scanTOMLOrder(data)
	if err != nil {
		return nil, err
	}
	return order.mapping(nil, raw), nil
}

// tomlOrder records child keys per parent path, in document order.
// Array elements are addressed by their index as a path segment.
type tomlOrder struct {
	children map[string][]string
	seen     map[string]bool
	arrays   map[string]int // array-of-tables path -> element count so far
}

func scanTOMLOrder(data []byte) (*tomlOrder, error) {
	o := &tomlOrder{
		children: make(map[string][]string),
		seen:     make(map[string]bool),
		arrays:   make(map[string]int),
	}

	var p unstable.Parser
	p.Reset(data)

	var current []string
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table:
			current = o.resolve(keyParts(e.Key()))
		case unstable.ArrayTable:
			parts := keyParts(e.Key())
			last := parts[len(parts)-1]
			base := o.resolve(parts[:len(parts)-1])
			o.add(base, last)
			base = extend(base, last)
			k := joinPath(base)
			o.arrays[k]++
			current = extend(base, strconv.Itoa(o.arrays[k]-1))
		case unstable.KeyValue:
			o.keyValue(current, e)
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return o, nil
}

// resolve walks a table header, stepping into the latest element of any
// array of tables on the way.
func (o *tomlOrder) resolve(parts []string) []string {
	var path []string
	for _, part := range parts {
		o.add(path, part)
		path = extend(path, part)
		if n := o.arrays[joinPath(path)]; n > 0 {
			path = extend(path, strconv.Itoa(n-1))
		}
	}
	return path
}

func (o *tomlOrder) keyValue(parent []string, kv *unstable.Node) {
	path := parent
	for _, part := range keyParts(kv.Key()) {
		o.add(path, part)
		path = extend(path, part)
	}
	o.value(path, kv.Value())
}

func (o *tomlOrder) value(path []string, n *unstable.Node) {
	switch n.Kind {
	case unstable.InlineTable:
		it := n.Children()
		for it.Next() {
			if c := it.Node(); c.Kind == unstable.KeyValue {
				o.keyValue(path, c)
			}
		}
	case unstable.Array:
		i := 0
		it := n.Children()
		for it.Next() {
			c := it.Node()
			if c.Kind == unstable.Comment {
				continue
			}
			o.value(extend(path, strconv.Itoa(i)), c)
			i++
		}
	}
}

func (o *tomlOrder) add(parent []string, key string) {
	p := joinPath(parent)
	id := p + "\x00" + key
	if o.seen[id] {
		return
	}
	o.seen[id] = true
	o.children[p] = append(o.children[p], key)
}

func (o *tomlOrder) mapping(path []string, raw map[string]any) *getconfig.Mapping {
	m := getconfig.NewMapping()
	keys := o.children[joinPath(path)]

	// Keys the scan did not see keep a stable sorted position at the end.
	var rest []string
	for k := range raw {
		if !o.seen[joinPath(path)+"\x00"+k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)

	for _, k := range append(append([]string(nil), keys...), rest...) {
		v, ok := raw[k]
		if !ok {
			continue
		}
		m.Set(k, o.convert(extend(path, k), v))
	}
	return m
}

func (o *tomlOrder) convert(path []string, v any) getconfig.Value {
	switch t := v.(type) {
	case map[string]any:
		return o.mapping(path, t)
	case []any:
		seq := make(getconfig.Sequence, len(t))
		for i, e := range t {
			seq[i] = o.convert(extend(path, strconv.Itoa(i)), e)
		}
		return seq
	default:
		return getconfig.FromAny(v)
	}
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// extend returns path+seg without aliasing path's backing array.
func extend(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}

func joinPath(path []string) string {
	return strings.Join(path, "\x00")
}
