package getconfig

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSnapshot(t *testing.T) {
	cfg := loadStatic(t, map[string]string{
		"default":    "database:\n  host: localhost\n  password: hunter2\nname: svc",
		"production": "database:\n  host: prod.internal",
	}, "production")

	before := time.Now().UTC()
	snap, err := CreateSnapshot(cfg)
	require.NoError(t, err)

	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.False(t, snap.Timestamp.Before(before.Add(-time.Second)))
	assert.Equal(t, "production", snap.Env)
	assert.False(t, snap.IsDev)
	assert.Equal(t, []string{"default", "production"}, snap.Layers)
	assert.Equal(t, cfg.Interface(), snap.Config.Interface())
	assert.Len(t, snap.Provenance, 5)
}

func TestCreateSnapshot_IsIndependentCopy(t *testing.T) {
	cfg := loadStatic(t, map[string]string{"default": "a: 1"}, "qa")

	snap, err := CreateSnapshot(cfg)
	require.NoError(t, err)

	cfg.Tree.Set("a", Scalar{V: 2})
	cfg.Layers[0] = "changed"

	v, _ := snap.Config.Get("a")
	assert.Equal(t, Scalar{V: 1}, v)
	assert.Equal(t, []string{"default"}, snap.Layers)
}

func TestCreateSnapshot_ExcludeFields(t *testing.T) {
	cfg := loadStatic(t, map[string]string{
		"default": "database:\n  host: localhost\n  password: hunter2\ncache:\n  redis:\n    url: r\n  ttl: 5",
	}, "qa")

	snap, err := CreateSnapshot(cfg, WithExcludeFields("database.password", "cache.redis", "does.not.exist"))
	require.NoError(t, err)

	_, ok := snap.Config.Lookup("database", "password")
	assert.False(t, ok)
	_, ok = snap.Config.Lookup("cache", "redis")
	assert.False(t, ok)
	v, ok := snap.Config.Lookup("cache", "ttl")
	require.True(t, ok)
	assert.Equal(t, Scalar{V: 5}, v)

	for _, f := range snap.Provenance {
		if f.KeyPath == "database.password" || strings.HasPrefix(f.KeyPath, "cache.redis") {
			t.Errorf("excluded path %s still has provenance", f.KeyPath)
		}
	}

	// The live config keeps every field.
	_, ok = cfg.Get("database.password")
	assert.True(t, ok)
}

func TestCreateSnapshot_NilConfig(t *testing.T) {
	_, err := CreateSnapshot(nil)
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestExpandPathWithTime(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		template string
		want     string
	}{
		{"config.json", "config.json"},
		{"snap-{{timestamp}}.json", "snap-20240506-070809.json"},
		{"{{timestamp}}/{{timestamp}}.json", "20240506-070809/20240506-070809.json"},
	}
	for _, tt := range tests {
		if got := ExpandPathWithTime(tt.template, ts); got != tt.want {
			t.Errorf("ExpandPathWithTime(%q) = %q, want %q", tt.template, got, tt.want)
		}
	}
}

func TestExpandPathWithTime_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 5, 6, 9, 0, 0, 0, loc)
	assert.Equal(t, "20240506-070000", ExpandPathWithTime("{{timestamp}}", ts))
}

func TestWriteAndReadSnapshot(t *testing.T) {
	cfg := loadStatic(t, map[string]string{"default": "b: 1\na:\n  list: [x, y]"}, "staging")
	snap, err := CreateSnapshot(cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	template := filepath.Join(dir, "nested", "snap-{{timestamp}}.json")
	require.NoError(t, WriteSnapshot(snap, template))

	path := ExpandPathWithTime(template, snap.Timestamp)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Version, got.Version)
	assert.True(t, snap.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, "staging", got.Env)
	assert.Equal(t, snap.Layers, got.Layers)
	assert.Equal(t, []string{"b", "a", "getconfig"}, got.Config.Keys())
	assert.Equal(t, snap.Config.Interface(), got.Config.Interface())
	assert.Equal(t, snap.Provenance, got.Provenance)
}

func TestWriteSnapshot_JSONShape(t *testing.T) {
	cfg := loadStatic(t, map[string]string{"default": "a: 1"}, "qa")
	snap, err := CreateSnapshot(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, WriteSnapshot(snap, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"version", "timestamp", "env", "isDev", "layers", "config", "provenance"} {
		assert.Contains(t, raw, key)
	}
}

func TestWriteSnapshot_Nil(t *testing.T) {
	assert.ErrorIs(t, WriteSnapshot(nil, "x.json"), ErrNilConfig)
}

func TestReadSnapshot_UnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"9.9","config":{}}`), 0600))

	_, err := ReadSnapshot(path)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestReadSnapshot_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":`), 0600))

	_, err := ReadSnapshot(path)
	assert.Error(t, err)

	_, err = ReadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
