package getconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML document into a tree, keeping mapping key order.
// An empty document yields an empty mapping. An anchor that contains itself
// and alias expansion out of proportion to the document are errors.
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return NewMapping(), nil
	}
	d := &yamlDecoder{expanding: make(map[*yaml.Node]bool)}
	return d.fromNode(&doc)
}

// Alias expansion limits, matching the ratios yaml.v3 applies when decoding
// into Go values.
const (
	aliasRatioRangeLow  = 400000
	aliasRatioRangeHigh = 4000000
)

// allowedAliasRatio returns the largest share of decoded nodes that may come
// from alias expansion once decodeCount nodes have been produced.
func allowedAliasRatio(decodeCount int) float64 {
	switch {
	case decodeCount <= aliasRatioRangeLow:
		return 0.99
	case decodeCount >= aliasRatioRangeHigh:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(decodeCount-aliasRatioRangeLow)/float64(aliasRatioRangeHigh-aliasRatioRangeLow))
	}
}

type yamlDecoder struct {
	expanding   map[*yaml.Node]bool // anchors whose alias is being expanded
	aliasDepth  int
	decodeCount int
	aliasCount  int
}

func (d *yamlDecoder) fromNode(n *yaml.Node) (Value, error) {
	d.decodeCount++
	if d.aliasDepth > 0 {
		d.aliasCount++
	}
	if d.aliasCount > 100 && d.decodeCount > 1000 &&
		float64(d.aliasCount)/float64(d.decodeCount) > allowedAliasRatio(d.decodeCount) {
		return nil, errors.New("yaml: document contains excessive aliasing")
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewMapping(), nil
		}
		return d.fromNode(n.Content[0])
	case yaml.AliasNode:
		if d.expanding[n.Alias] {
			return nil, fmt.Errorf("line %d: anchor %q contains itself", n.Line, n.Value)
		}
		d.expanding[n.Alias] = true
		d.aliasDepth++
		v, err := d.fromNode(n.Alias)
		d.aliasDepth--
		delete(d.expanding, n.Alias)
		return v, err
	case yaml.SequenceNode:
		out := make(Sequence, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := d.fromNode(child)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			v, err := d.fromNode(val)
			if err != nil {
				return nil, err
			}
			if key.Tag == "!!merge" {
				mergeAnchors(m, v)
				continue
			}
			m.Set(key.Value, v)
		}
		return m, nil
	case yaml.ScalarNode:
		var out any
		if err := n.Decode(&out); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Scalar{V: out}, nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

// mergeAnchors applies a YAML "<<" merge key: keys already set explicitly win.
func mergeAnchors(m *Mapping, v Value) {
	switch t := v.(type) {
	case *Mapping:
		for _, k := range t.Keys() {
			if _, ok := m.Get(k); !ok {
				child, _ := t.Get(k)
				m.Set(k, child)
			}
		}
	case Sequence:
		for _, item := range t {
			mergeAnchors(m, item)
		}
	}
}

// ParseJSON decodes a single JSON value into a tree, keeping object key order.
// Integral numbers become int when they fit, others float64.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid JSON: unexpected data after top-level value")
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid JSON: object key %v is not a string", keyTok)
				}
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, v)
			}
			if err := closeDelim(dec); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			out := Sequence{}
			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			if err := closeDelim(dec); err != nil {
				return nil, err
			}
			return out, nil
		}
		return nil, fmt.Errorf("invalid JSON: unexpected %q", rune(t))
	case json.Number:
		if i, err := t.Int64(); err == nil && int64(int(i)) == i {
			return Scalar{V: int(i)}, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON number %s: %w", t, err)
		}
		return Scalar{V: f}, nil
	default:
		return Scalar{V: t}, nil
	}
}

func closeDelim(dec *json.Decoder) error {
	_, err := dec.Token()
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
