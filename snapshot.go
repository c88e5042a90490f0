package getconfig

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Azhovan/getconfig/internal/normalize"
)

// MaxSnapshotSize is the maximum allowed snapshot size (100MB).
const MaxSnapshotSize = 100 * 1024 * 1024

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = "1.0"

// Snapshot errors.
var (
	// ErrSnapshotTooLarge is returned when a snapshot exceeds MaxSnapshotSize.
	ErrSnapshotTooLarge = errors.New("getconfig: snapshot exceeds 100MB size limit")

	// ErrNilConfig is returned when CreateSnapshot receives a nil config.
	ErrNilConfig = errors.New("getconfig: config is nil")

	// ErrUnsupportedVersion is returned when reading a snapshot with unknown version.
	ErrUnsupportedVersion = errors.New("getconfig: unsupported snapshot version")
)

// supportedVersions lists snapshot format versions that ReadSnapshot accepts.
var supportedVersions = map[string]bool{
	"1.0": true,
}

// ConfigSnapshot represents a point-in-time capture of a resolved configuration.
type ConfigSnapshot struct {
	// Version is the snapshot format version (currently "1.0")
	Version string `json:"version"`

	// Timestamp is when the snapshot was created
	Timestamp time.Time `json:"timestamp"`

	// Env and IsDev mirror Config.Env and Config.IsDev
	Env   string `json:"env"`
	IsDev bool   `json:"isDev"`

	// Layers lists the layers that were merged, in order.
	Layers []string `json:"layers"`

	// Config is the resolved tree, in key order.
	Config *Mapping `json:"config"`

	// Provenance tracks the layer behind each leaf.
	Provenance []FieldProvenance `json:"provenance"`
}

// SnapshotOption configures snapshot creation behavior.
type SnapshotOption func(*snapshotConfig)

// snapshotConfig holds internal configuration for snapshot creation.
type snapshotConfig struct {
	excludeFields []string // Dotted paths to exclude
}

// WithExcludeFields excludes the given dotted paths from the snapshot
// (e.g., "database.password", "cache.redis").
func WithExcludeFields(paths ...string) SnapshotOption {
	return func(cfg *snapshotConfig) {
		cfg.excludeFields = append(cfg.excludeFields, paths...)
	}
}

// CreateSnapshot captures cfg. The tree is deep-copied, so later changes to cfg
// do not leak into the snapshot.
func CreateSnapshot(cfg *Config, opts ...SnapshotOption) (*ConfigSnapshot, error) {
	if cfg == nil || cfg.Tree == nil {
		return nil, ErrNilConfig
	}

	snapCfg := &snapshotConfig{}
	for _, opt := range opts {
		opt(snapCfg)
	}

	tree := cfg.Tree.Clone()
	for _, path := range snapCfg.excludeFields {
		deletePath(tree, path)
	}

	var provFields []FieldProvenance
	if prov := cfg.Provenance(); prov != nil {
		for _, f := range prov.Fields {
			if !excluded(f.KeyPath, snapCfg.excludeFields) {
				provFields = append(provFields, f)
			}
		}
	}

	return &ConfigSnapshot{
		Version:    SnapshotVersion,
		Timestamp:  time.Now().UTC(),
		Env:        cfg.Env,
		IsDev:      cfg.IsDev,
		Layers:     append([]string(nil), cfg.Layers...),
		Config:     tree,
		Provenance: provFields,
	}, nil
}

// ExpandPath expands template variables using current time.
// For consistency with snapshot metadata, prefer WriteSnapshot which
// uses the snapshot's internal timestamp for expansion.
func ExpandPath(template string) string {
	return ExpandPathWithTime(template, time.Now())
}

// ExpandPathWithTime replaces all {{timestamp}} occurrences with t formatted
// as 20060102-150405 (UTC).
func ExpandPathWithTime(template string, t time.Time) string {
	timestamp := t.UTC().Format("20060102-150405")
	return strings.ReplaceAll(template, "{{timestamp}}", timestamp)
}

// WriteSnapshot persists a snapshot to disk with atomic write semantics.
// Supports the {{timestamp}} template variable in path, expanded with the
// snapshot's own Timestamp so the filename matches the metadata.
// Returns ErrSnapshotTooLarge if serialized size exceeds 100MB.
func WriteSnapshot(snapshot *ConfigSnapshot, pathTemplate string) error {
	if snapshot == nil {
		return ErrNilConfig
	}

	targetPath := ExpandPathWithTime(pathTemplate, snapshot.Timestamp)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	if len(data) > MaxSnapshotSize {
		return ErrSnapshotTooLarge
	}

	dir := filepath.Dir(targetPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	tempPath, err := generateTempFileName(targetPath)
	if err != nil {
		return err
	}

	var tempFileCreated bool
	defer func() {
		if tempFileCreated {
			_ = os.Remove(tempPath)
		}
	}()

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return err
	}
	tempFileCreated = true

	if err := os.Rename(tempPath, targetPath); err != nil {
		return err
	}
	tempFileCreated = false

	return nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*ConfigSnapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxSnapshotSize {
		return nil, ErrSnapshotTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snapshot ConfigSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if !supportedVersions[snapshot.Version] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, snapshot.Version)
	}
	return &snapshot, nil
}

func deletePath(tree *Mapping, path string) {
	segs := normalize.SplitPath(path)
	if len(segs) == 0 {
		return
	}
	parent, ok := tree.Lookup(segs[:len(segs)-1]...)
	if !ok {
		return
	}
	if m, ok := parent.(*Mapping); ok {
		m.Delete(segs[len(segs)-1])
	}
}

// excluded reports whether keyPath is one of paths or lies beneath one.
func excluded(keyPath string, paths []string) bool {
	for _, p := range paths {
		if keyPath == p || strings.HasPrefix(keyPath, p+".") {
			return true
		}
	}
	return false
}

// generateTempFileName returns targetPath + ".tmp." + 16 random hex chars, in
// the target's directory so the final rename stays on one filesystem.
func generateTempFileName(targetPath string) (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return targetPath + ".tmp." + hex.EncodeToString(randomBytes), nil
}
