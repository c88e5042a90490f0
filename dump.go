package getconfig

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Azhovan/getconfig/internal/normalize"
)

// redactedValue replaces values selected with WithRedacted.
const redactedValue = "***redacted***"

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for DumpEffective.
type dumpConfig struct {
	withSources bool            // Include layer attribution for each leaf (text only)
	format      string          // "text", "json" or "yaml"
	indent      string          // Indentation for JSON and YAML output (default: "  ")
	redact      map[string]bool // Dotted paths whose values are hidden
}

// WithSources includes the layer that supplied each value in text output.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs the configuration tree as JSON.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.format = "json"
	}
}

// AsYAML outputs the configuration tree as YAML.
func AsYAML() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.format = "yaml"
	}
}

// WithIndent sets the indentation for JSON and YAML output.
// Default is two spaces ("  ").
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// WithRedacted hides the values at the given dotted paths.
func WithRedacted(paths ...string) DumpOption {
	return func(cfg *dumpConfig) {
		if cfg.redact == nil {
			cfg.redact = make(map[string]bool)
		}
		for _, p := range paths {
			cfg.redact[p] = true
		}
	}
}

// DumpEffective writes the resolved configuration in key order.
// Returns an error if writing to the writer fails.
func DumpEffective(w io.Writer, cfg *Config, opts ...DumpOption) error {
	if cfg == nil || cfg.Tree == nil {
		return fmt.Errorf("config is nil")
	}

	config := dumpConfig{
		format: "text",
		indent: "  ",
	}
	for _, opt := range opts {
		opt(&config)
	}

	tree := cfg.Tree
	if len(config.redact) > 0 {
		tree = redactTree(tree, config.redact)
	}

	switch config.format {
	case "json":
		return dumpAsJSON(w, tree, config)
	case "yaml":
		return dumpAsYAML(w, tree, config)
	default:
		return dumpAsText(w, tree, cfg.Provenance(), config)
	}
}

// dumpAsText outputs one "key.path: value" line per leaf.
func dumpAsText(w io.Writer, tree *Mapping, prov *Provenance, config dumpConfig) error {
	layers := make(map[string]string)
	if prov != nil {
		for _, f := range prov.Fields {
			layers[f.KeyPath] = f.Layer
		}
	}

	var writeErr error
	walkLeaves(tree, "", func(path string, v Value) {
		if writeErr != nil {
			return
		}
		line := fmt.Sprintf("%s: %s", path, formatValue(v))
		if config.withSources && layers[path] != "" {
			line += fmt.Sprintf(" (source: %s)", layers[path])
		}
		line += "\n"

		if _, err := io.WriteString(w, line); err != nil {
			writeErr = fmt.Errorf("write error: %w", err)
		}
	})
	return writeErr
}

func dumpAsJSON(w io.Writer, tree *Mapping, config dumpConfig) error {
	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(tree, "", config.indent)
	} else {
		data, err = json.Marshal(tree)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

func dumpAsYAML(w io.Writer, tree *Mapping, config dumpConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(len(config.indent))
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("yaml marshal error: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// formatValue formats a leaf for text output. Strings are quoted.
func formatValue(v Value) string {
	switch t := v.(type) {
	case Scalar:
		switch s := t.V.(type) {
		case nil:
			return "<nil>"
		case string:
			return fmt.Sprintf("%q", s)
		case time.Time:
			return s.Format(time.RFC3339)
		}
	case *Mapping:
		if t.Len() == 0 {
			return "{}"
		}
	}
	str, err := stringify(v)
	if err != nil {
		return fmt.Sprintf("%v", v.Interface())
	}
	return str
}

// redactTree returns a copy of tree with the values at paths replaced.
func redactTree(tree *Mapping, paths map[string]bool) *Mapping {
	out := tree.Clone()
	for path := range paths {
		segs := normalize.SplitPath(path)
		if len(segs) == 0 {
			continue
		}
		parent, ok := out.Lookup(segs[:len(segs)-1]...)
		if !ok {
			continue
		}
		m, ok := parent.(*Mapping)
		if !ok {
			continue
		}
		last := segs[len(segs)-1]
		if _, exists := m.Get(last); exists {
			m.Set(last, Scalar{V: redactedValue})
		}
	}
	return out
}
