// Package sourceenv provides environment lookups for placeholder resolution.
//
// Lookups read the process environment, optionally overlaid with .env files.
//
// Example:
//
//	env, err := sourceenv.New(sourceenv.Options{Files: []string{".env"}})
//	loader := getconfig.NewLoader().WithEnv(env)
package sourceenv
