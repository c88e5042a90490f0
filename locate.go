package getconfig

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDirName is the directory name searched for by FindConfigDir.
const ConfigDirName = "config"

// Environment variables that override config directory discovery, in priority order.
const (
	EnvCodeLocation   = "CODE_LOCATION"    // <value>/config
	EnvLambdaTaskRoot = "LAMBDA_TASK_ROOT" // <value>/config
	EnvRoot           = "GETCONFIG_ROOT"   // used as-is
)

// FindConfigDir searches start and each of its parents for a directory named
// "config". Returns *DirNotFoundError when the filesystem root is reached.
func FindConfigDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		candidate := filepath.Join(dir, ConfigDirName)
		if isDir(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &DirNotFoundError{Start: start}
		}
		dir = parent
	}
}

// ResolveRoot returns the config directory. An override from CODE_LOCATION,
// LAMBDA_TASK_ROOT or GETCONFIG_ROOT bypasses the search; relative overrides
// resolve against the working directory. Otherwise the search starts at start,
// or at the working directory when start is empty.
func ResolveRoot(env EnvLookup, start string) (string, error) {
	if env == nil {
		env = OSEnv
	}

	var override string
	if v, ok := env(EnvCodeLocation); ok && v != "" {
		override = filepath.Join(v, ConfigDirName)
	} else if v, ok := env(EnvLambdaTaskRoot); ok && v != "" {
		override = filepath.Join(v, ConfigDirName)
	} else if v, ok := env(EnvRoot); ok && v != "" {
		override = v
	}
	if override != "" {
		return filepath.Abs(override)
	}

	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		start = wd
	}
	return FindConfigDir(start)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
