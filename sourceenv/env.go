package sourceenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Azhovan/getconfig"
	"github.com/joho/godotenv"
)

// Options configures environment lookup behavior.
type Options struct {
	// Prefix is prepended to every name looked up: with Prefix "APP_",
	// the placeholder $PORT reads APP_PORT.
	Prefix string

	// Files are .env files read once by New. Later files win over earlier ones.
	// Missing files are skipped.
	Files []string

	// Override gives values from Files precedence over the process environment.
	// Default: false (the process environment wins).
	Override bool
}

// New returns an EnvLookup over the process environment overlaid with Files.
func New(opts Options) (getconfig.EnvLookup, error) {
	fileVars := make(map[string]string)
	for _, file := range opts.Files {
		vars, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read env file %s: %w", file, err)
		}
		for k, v := range vars {
			fileVars[k] = v
		}
	}

	return func(name string) (string, bool) {
		key := opts.Prefix + name
		if opts.Override {
			if v, ok := fileVars[key]; ok {
				return v, true
			}
		}
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}, nil
}
