// Package sourcefile serves configuration layers from a directory of JSON, JSONC, YAML or TOML files.
//
// Layer "production" is read from the first of production.json, production.jsonc,
// production.yaml, production.yml, production.toml that exists.
//
// Example:
//
//	source := sourcefile.New("/app/config", sourcefile.Options{})
//	loader := getconfig.NewLoader().WithSource(source)
package sourcefile
