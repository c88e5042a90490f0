package getconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind identifies the shape of a configuration tree node.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a node in a configuration tree.
// The only implementations are *Mapping, Sequence and Scalar.
type Value interface {
	Kind() Kind
	// Interface converts the node to plain Go values (map[string]any, []any, scalars).
	Interface() any
	sealed()
}

// Scalar is a leaf: string, bool, number, nil, or a coerced value such as time.Time.
type Scalar struct {
	V any
}

func (Scalar) Kind() Kind       { return KindScalar }
func (s Scalar) Interface() any { return s.V }
func (Scalar) sealed()          {}

func (s Scalar) MarshalJSON() ([]byte, error) { return json.Marshal(s.V) }
func (s Scalar) MarshalYAML() (any, error)    { return s.V, nil }

// Sequence is an ordered list of nodes.
type Sequence []Value

func (Sequence) Kind() Kind { return KindSequence }
func (Sequence) sealed()    {}

func (s Sequence) Interface() any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v.Interface()
	}
	return out
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Value(s))
}

// Mapping is a string-keyed node that remembers insertion order.
// Keys already present keep their position when overwritten.
type Mapping struct {
	keys  []string
	items map[string]Value
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{items: make(map[string]Value)}
}

func (m *Mapping) Kind() Kind { return KindMapping }
func (m *Mapping) sealed()    {}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.items[key]
	return v, ok
}

// Set stores v under key. New keys are appended; existing keys keep their position.
func (m *Mapping) Set(key string, v Value) {
	if v == nil {
		v = Scalar{}
	}
	if m.items == nil {
		m.items = make(map[string]Value)
	}
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = v
}

// Delete removes key and reports whether it was present.
func (m *Mapping) Delete(key string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.items[key]; !ok {
		return false
	}
	delete(m.items, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Lookup walks path segment by segment. Numeric segments index into sequences.
func (m *Mapping) Lookup(path ...string) (Value, bool) {
	var cur Value = m
	for _, seg := range path {
		switch node := cur.(type) {
		case *Mapping:
			next, ok := node.Get(seg)
			if !ok {
				return nil, false
			}
			cur = next
		case Sequence:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Clone returns a deep copy of m.
func (m *Mapping) Clone() *Mapping {
	if m == nil {
		return nil
	}
	out := &Mapping{
		keys:  append([]string(nil), m.keys...),
		items: make(map[string]Value, len(m.items)),
	}
	for k, v := range m.items {
		out.items[k] = Clone(v)
	}
	return out
}

func (m *Mapping) Interface() any {
	out := make(map[string]any, m.Len())
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out[k] = m.items[k].Interface()
	}
	return out
}

func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		for i, k := range m.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(m.items[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces m with the decoded object, keeping the key order of data.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Mapping)
	if !ok {
		return fmt.Errorf("getconfig: cannot unmarshal %s into mapping", v.Kind())
	}
	*m = *decoded
	return nil
}

func (m *Mapping) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if m == nil {
		return node, nil
	}
	for _, k := range m.keys {
		var key, val yaml.Node
		if err := key.Encode(k); err != nil {
			return nil, err
		}
		if err := val.Encode(m.items[k]); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}

// Clone returns a deep copy of v. Scalars are shared.
func Clone(v Value) Value {
	switch t := v.(type) {
	case *Mapping:
		return t.Clone()
	case Sequence:
		if t == nil {
			return Sequence(nil)
		}
		out := make(Sequence, len(t))
		for i := range t {
			out[i] = Clone(t[i])
		}
		return out
	default:
		return v
	}
}

// FromAny converts plain Go values into a tree. Go maps have no order, so their
// keys are sorted.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Scalar{}
	case Value:
		return t
	case map[string]any:
		m := NewMapping()
		for _, k := range sortedKeys(t) {
			m.Set(k, FromAny(t[k]))
		}
		return m
	case []any:
		out := make(Sequence, len(t))
		for i := range t {
			out[i] = FromAny(t[i])
		}
		return out
	case []string:
		out := make(Sequence, len(t))
		for i := range t {
			out[i] = Scalar{V: t[i]}
		}
		return out
	case []byte:
		return Scalar{V: string(t)}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(Sequence, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = FromAny(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, k := range keys {
			m.Set(k, FromAny(byKey[k].Interface()))
		}
		return m
	}
	return Scalar{V: v}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
