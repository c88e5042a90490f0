package getconfig

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	// EnvProfile selects the active profile. When unset, every dev alias is attempted.
	EnvProfile = "GETCONFIG_ENV"

	// DefaultEnv is reported as Config.Env when no profile is configured.
	DefaultEnv = "development"
)

// Fixed layers surrounding the profile layers.
const (
	LayerDefault = "default"
	LayerAll     = "all"
	LayerLocal   = "local"
)

var devAliases = []string{"dev", "devel", "develop", "development"}

// DevAliases returns the profile names treated as development.
func DevAliases() []string {
	return append([]string(nil), devAliases...)
}

func isDevAlias(profile string) bool {
	for _, alias := range devAliases {
		if alias == profile {
			return true
		}
	}
	return false
}

// LayerNames returns the ordered layer list for a profile: default, all, the
// profile (or every dev alias when profile is empty), then local.
func LayerNames(profile string) []string {
	names := []string{LayerDefault, LayerAll}
	if profile == "" {
		names = append(names, devAliases...)
	} else {
		names = append(names, profile)
	}
	names = append(names, LayerLocal)

	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Loader resolves configuration from layered sources.
// Layers are merged in order (later override earlier); each layer is
// env-resolved before merging and self references are resolved once at the end.
// A Loader is not safe for concurrent configuration changes.
type Loader struct {
	sources    []LayerSource
	registry   *Registry
	env        EnvLookup
	profile    string
	hasProfile bool
	profileVar string
	logger     *zap.Logger
}

// NewLoader creates a Loader with no sources, the built-in registry, the
// process environment and a no-op logger.
func NewLoader() *Loader {
	return &Loader{
		sources:    make([]LayerSource, 0),
		registry:   NewRegistry(),
		env:        OSEnv,
		profileVar: EnvProfile,
		logger:     zap.NewNop(),
	}
}

// WithSource adds a source. For each layer, sources are consulted in the order added.
func (l *Loader) WithSource(src LayerSource) *Loader {
	l.sources = append(l.sources, src)
	return l
}

// WithRegistry sets the coercion registry.
func (l *Loader) WithRegistry(reg *Registry) *Loader {
	if reg != nil {
		l.registry = reg
	}
	return l
}

// WithEnv sets the environment used for placeholders and profile selection.
func (l *Loader) WithEnv(env EnvLookup) *Loader {
	if env != nil {
		l.env = env
	}
	return l
}

// WithProfile pins the profile, ignoring the profile variable.
// An empty profile means "not configured" (dev aliases are attempted).
func (l *Loader) WithProfile(profile string) *Loader {
	l.profile = profile
	l.hasProfile = true
	return l
}

// WithProfileVar changes the variable read for the profile. Default: GETCONFIG_ENV.
func (l *Loader) WithProfileVar(name string) *Loader {
	l.profileVar = name
	return l
}

// WithLogger sets the logger used to report layer discovery.
func (l *Loader) WithLogger(logger *zap.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Profile returns the configured profile, or "" when none is configured.
func (l *Loader) Profile() string {
	if l.hasProfile {
		return l.profile
	}
	if v, ok := l.env(l.profileVar); ok {
		return v
	}
	return ""
}

// Load reads every layer, merges and resolves them.
// Returns the resolved Config or one of the package's coded errors; nothing
// partially resolved is ever returned.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	if len(l.sources) == 0 {
		return nil, errors.New("getconfig: no layer sources configured")
	}

	profile := l.Profile()
	layers := LayerNames(profile)

	tree := NewMapping()
	recorder := newProvenanceRecorder()
	var found []string

	for _, layer := range layers {
		for _, src := range l.sources {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			data, err := src.Lookup(ctx, layer)
			if errors.Is(err, ErrLayerNotFound) {
				l.logger.Debug("layer not found", zap.String("layer", layer), zap.String("source", src.Name()))
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("load layer %s from %s: %w", layer, src.Name(), err)
			}
			if data == nil {
				data = NewMapping()
			}

			if _, err := ResolveEnv(data, l.env, l.registry); err != nil {
				return nil, fmt.Errorf("layer %s: %w", layer, err)
			}

			recorder.record(layer, src.Name(), data)
			Merge(tree, data)
			found = append(found, layer)

			l.logger.Debug("layer merged",
				zap.String("layer", layer),
				zap.String("source", src.Name()),
				zap.Int("keys", data.Len()),
			)
		}
	}

	if len(found) == 0 {
		return nil, &FileNotFoundError{Layers: layers}
	}

	env := profile
	if env == "" {
		env = DefaultEnv
	}
	isDev := profile == "" || isDevAlias(profile)
	setMetadata(tree, env, isDev)
	recorder.origins[MetadataKey+".env"] = FieldProvenance{Layer: metadataLayer}
	recorder.origins[MetadataKey+".isDev"] = FieldProvenance{Layer: metadataLayer}

	if _, err := ResolveRefs(tree, tree); err != nil {
		return nil, err
	}

	l.logger.Info("environment detected",
		zap.String("env", env),
		zap.Bool("isDev", isDev),
		zap.Strings("layers", found),
	)

	return &Config{
		Tree:       tree,
		Env:        env,
		IsDev:      isDev,
		Layers:     found,
		provenance: recorder.build(tree),
	}, nil
}

// setMetadata writes getconfig.env and getconfig.isDev, keeping any other keys
// a layer placed under getconfig.
func setMetadata(tree *Mapping, env string, isDev bool) {
	v, _ := tree.Get(MetadataKey)
	meta, ok := v.(*Mapping)
	if !ok {
		meta = NewMapping()
		tree.Set(MetadataKey, meta)
	}
	meta.Set("env", Scalar{V: env})
	meta.Set("isDev", Scalar{V: isDev})
}
