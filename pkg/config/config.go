package config

import (
	"path/filepath"
	"time"

	"github.com/arthur-debert/dotsync/pkg/types"
)

// Config is the fully merged dotsync configuration
type Config struct {
	// Home overrides the home directory targets are rooted at
	Home     string      `koanf:"home"`
	Sync     Sync        `koanf:"sync"`
	Security Security    `koanf:"security"`
	Repos    []RepoEntry `koanf:"repos"`
}

// Sync holds engine tuning
type Sync struct {
	// Workers bounds parallel hashing and classification
	Workers int `koanf:"workers"`

	// Retention is how long target hash records are kept before pruning
	Retention time.Duration `koanf:"retention"`

	// AutoPrune runs the retention sweep after every apply
	AutoPrune bool `koanf:"auto_prune"`
}

// Security holds safety-related configuration
type Security struct {
	// ProtectedPaths are direct children of home that are never written as a whole
	ProtectedPaths []string `koanf:"protected_paths"`
}

// RepoEntry is one [[repos]] table. Order in the file is priority order:
// later entries win.
type RepoEntry struct {
	Name string `koanf:"name"`
	Path string `koanf:"path"`
	Kind string `koanf:"kind"`

	// Active lists the dots subdirectories to activate, in order
	Active   []string `koanf:"active"`
	ReadOnly bool     `koanf:"read_only"`

	// Enabled defaults to true when unset
	Enabled *bool `koanf:"enabled"`
}

// DefaultName is the name used when neither the entry nor the repo's own
// metadata names the repo
func (r RepoEntry) DefaultName() string {
	if r.Name != "" {
		return r.Name
	}
	return filepath.Base(r.Path)
}

// IsEnabled reports whether the repo participates in the overlay
func (r RepoEntry) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// RepoKind returns the declared kind, defaulting to a plain folder
func (r RepoEntry) RepoKind() types.RepoKind {
	if r.Kind == "" {
		return types.RepoKindFolder
	}
	return types.RepoKind(r.Kind)
}
