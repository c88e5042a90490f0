package normalize

import (
	"strings"
)

// SplitPath splits a dotted key path into its segments.
// Examples:
//   - "a.deeper.value" → ["a", "deeper", "value"]
//   - "servers.0.host" → ["servers", "0", "host"]
//   - "" → []
func SplitPath(path string) []string {
	if path == "" {
		return []string{}
	}
	return strings.Split(path, ".")
}

// JoinPath combines a prefix with a key to create a nested configuration path.
// If prefix is empty, returns the key unchanged.
// Examples:
//   - JoinPath("database", "host") → "database.host"
//   - JoinPath("", "host") → "host"
//   - JoinPath("servers", "0") → "servers.0"
func JoinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return prefix + "." + key
}

// Parent returns the path one level up, or "" for a top-level key.
// Examples:
//   - "a.deeper.value" → "a.deeper"
//   - "host" → ""
func Parent(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[:i]
}
