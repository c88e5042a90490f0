package getconfig

import (
	"github.com/Azhovan/getconfig/internal/normalize"
)

// metadataLayer is the layer reported for the getconfig.env and getconfig.isDev keys.
const metadataLayer = "metadata"

// Provenance contains source information for the leaves of a resolved configuration.
type Provenance struct {
	Fields []FieldProvenance
}

// FieldProvenance describes where a leaf's value came from.
type FieldProvenance struct {
	KeyPath    string `json:"keyPath"`    // Dot notation (e.g., "database.host")
	Layer      string `json:"layer"`      // Layer that supplied the value (e.g., "production")
	SourceName string `json:"sourceName"` // Source identifier (e.g., "dir:/app/config")
}

// Lookup returns the provenance for keyPath.
func (p *Provenance) Lookup(keyPath string) (FieldProvenance, bool) {
	if p == nil {
		return FieldProvenance{}, false
	}
	for _, f := range p.Fields {
		if f.KeyPath == keyPath {
			return f, true
		}
	}
	return FieldProvenance{}, false
}

// provenanceRecorder remembers the last layer that set each leaf path.
type provenanceRecorder struct {
	origins map[string]FieldProvenance
}

func newProvenanceRecorder() *provenanceRecorder {
	return &provenanceRecorder{origins: make(map[string]FieldProvenance)}
}

func (r *provenanceRecorder) record(layer, sourceName string, tree *Mapping) {
	walkLeaves(tree, "", func(path string, _ Value) {
		r.origins[path] = FieldProvenance{KeyPath: path, Layer: layer, SourceName: sourceName}
	})
}

// build attributes every leaf of the final tree. Leaves copied in by a self
// reference have no entry of their own and inherit the nearest recorded ancestor.
func (r *provenanceRecorder) build(tree *Mapping) *Provenance {
	prov := &Provenance{}
	walkLeaves(tree, "", func(path string, _ Value) {
		for p := path; p != ""; p = normalize.Parent(p) {
			if origin, ok := r.origins[p]; ok {
				origin.KeyPath = path
				prov.Fields = append(prov.Fields, origin)
				return
			}
		}
	})
	return prov
}

// walkLeaves calls fn for every scalar, sequence and empty mapping under m,
// in key order. Sequences are leaves: layers replace them wholesale.
func walkLeaves(m *Mapping, prefix string, fn func(path string, v Value)) {
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		path := normalize.JoinPath(prefix, key)
		if child, ok := v.(*Mapping); ok && child.Len() > 0 {
			walkLeaves(child, path, fn)
			continue
		}
		fn(path, v)
	}
}
