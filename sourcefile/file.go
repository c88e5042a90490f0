package sourcefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azhovan/getconfig"
	"github.com/tidwall/jsonc"
)

// DefaultExtensions are tried in order when Options.Extensions is empty.
var DefaultExtensions = []string{".json", ".jsonc", ".yaml", ".yml", ".toml"}

// Options configures directory source behavior.
type Options struct {
	// Extensions to try for each layer, in order. The first existing file wins.
	// Empty = DefaultExtensions.
	Extensions []string
}

type dirSource struct {
	dir  string
	opts Options
}

// New creates a source that reads layer <name> from <dir>/<name>.<ext>.
func New(dir string, opts Options) getconfig.LayerSource {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	return &dirSource{dir: dir, opts: opts}
}

// Discover locates the config directory with getconfig.ResolveRoot and returns
// a source reading from it.
func Discover(env getconfig.EnvLookup, start string) (getconfig.LayerSource, error) {
	dir, err := getconfig.ResolveRoot(env, start)
	if err != nil {
		return nil, err
	}
	return New(dir, Options{}), nil
}

// Load discovers the config directory from the working directory and loads it
// with the process environment and the built-in types.
func Load(ctx context.Context) (*getconfig.Config, error) {
	src, err := Discover(getconfig.OSEnv, "")
	if err != nil {
		return nil, err
	}
	return getconfig.NewLoader().WithSource(src).Load(ctx)
}

// Lookup reads and parses the first file matching the layer name.
func (d *dirSource) Lookup(ctx context.Context, layer string) (*getconfig.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, ext := range d.opts.Extensions {
		path := filepath.Join(d.dir, layer+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		return Parse(path, data)
	}
	return nil, getconfig.ErrLayerNotFound
}

// Name returns a human-readable identifier for this source.
func (d *dirSource) Name() string {
	return "dir:" + d.dir
}

// ReadFile reads and parses a single configuration file.
func ReadFile(path string) (*getconfig.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes data using the format implied by path's extension.
// The top level must be a mapping.
func Parse(path string, data []byte) (*getconfig.Mapping, error) {
	var (
		tree getconfig.Value
		err  error
	)

	switch inferFormat(path) {
	case "yaml":
		tree, err = getconfig.ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parse YAML file %s: %w", path, err)
		}
	case "json":
		// jsonc.ToJSON strips comments and trailing commas.
		tree, err = getconfig.ParseJSON(jsonc.ToJSON(data))
		if err != nil {
			return nil, fmt.Errorf("parse JSON file %s: %w", path, err)
		}
	case "toml":
		tree, err = ParseTOML(data)
		if err != nil {
			return nil, fmt.Errorf("parse TOML file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: json, jsonc, yaml, yml, toml)", filepath.Ext(path))
	}

	m, ok := tree.(*getconfig.Mapping)
	if !ok {
		return nil, fmt.Errorf("config file %s: top level must be a mapping, got %s", path, tree.Kind())
	}
	return m, nil
}

func inferFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return "yaml"
	case ".json", ".jsonc":
		return "json"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}
