package getconfig

import (
	"encoding/json"
	"fmt"

	"github.com/Azhovan/getconfig/internal/normalize"
)

// MetadataKey is the top-level key holding the resolved profile metadata.
const MetadataKey = "getconfig"

// Config is a fully resolved configuration.
type Config struct {
	// Tree is the resolved tree, including the getconfig.env and getconfig.isDev metadata.
	Tree *Mapping

	// Env is the active profile, or DefaultEnv when none was configured.
	Env string

	// IsDev is true when no profile was configured or the profile is a dev alias.
	IsDev bool

	// Layers lists the layers that were found, in merge order.
	Layers []string

	provenance *Provenance
}

// Get returns the value at a dotted path such as "database.host" or "servers.0".
func (c *Config) Get(path string) (Value, bool) {
	if c == nil || c.Tree == nil {
		return nil, false
	}
	return c.Tree.Lookup(normalize.SplitPath(path)...)
}

// Provenance returns the layer attribution for each leaf.
func (c *Config) Provenance() *Provenance {
	if c == nil {
		return nil
	}
	return c.provenance
}

// Interface converts the tree to plain Go values.
func (c *Config) Interface() map[string]any {
	if c == nil || c.Tree == nil {
		return map[string]any{}
	}
	return c.Tree.Interface().(map[string]any)
}

// Decode copies the tree into out (a pointer) using its JSON form, so `json`
// struct tags apply.
func (c *Config) Decode(out any) error {
	if c == nil || c.Tree == nil {
		return fmt.Errorf("config is nil")
	}
	data, err := json.Marshal(c.Tree)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (c *Config) MarshalJSON() ([]byte, error) {
	if c == nil || c.Tree == nil {
		return []byte("{}"), nil
	}
	return c.Tree.MarshalJSON()
}
