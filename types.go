package getconfig

import (
	"context"
)

// LayerSource provides the raw tree for a named layer (e.g. "default", "production", "local").
type LayerSource interface {
	// Lookup returns the layer's tree, or ErrLayerNotFound when the source has no such layer.
	// The returned tree is owned by the caller and may be modified.
	Lookup(ctx context.Context, layer string) (*Mapping, error)

	// Name identifies the source in errors and provenance (e.g. "dir:/app/config").
	Name() string
}

// StaticSource serves layers from memory. Useful for embedded defaults and tests.
type StaticSource map[string]*Mapping

func (s StaticSource) Lookup(ctx context.Context, layer string) (*Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, ok := s[layer]
	if !ok {
		return nil, ErrLayerNotFound
	}
	if m == nil {
		return NewMapping(), nil
	}
	return m.Clone(), nil
}

func (s StaticSource) Name() string { return "static" }
