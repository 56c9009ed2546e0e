// pkg/config/loader_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Temp directories, environment variables
// PURPOSE: Test layered configuration loading and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPaths(t *testing.T) paths.Paths {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(paths.EnvDotsyncConfigDir, filepath.Join(dir, "config"))
	t.Setenv(paths.EnvDotsyncDataDir, filepath.Join(dir, "data"))
	t.Setenv(paths.EnvDotsyncConfig, "")
	t.Setenv("DOTSYNC_SYNC_WORKERS", "")
	t.Setenv("DOTSYNC_SYNC_AUTO_PRUNE", "")

	p, err := paths.New(filepath.Join(dir, "home"))
	require.NoError(t, err)
	return p
}

func writeConfig(t *testing.T, p paths.Paths, content string) string {
	t.Helper()
	path := p.ConfigFilePath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	p := setupPaths(t)

	cfg, err := Load(p, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Sync.Workers)
	assert.Equal(t, 720*time.Hour, cfg.Sync.Retention)
	assert.False(t, cfg.Sync.AutoPrune)
	assert.Contains(t, cfg.Security.ProtectedPaths, ".ssh")
	assert.Empty(t, cfg.Repos)
}

func TestLoad_UserConfig(t *testing.T) {
	p := setupPaths(t)
	cfgPath := writeConfig(t, p, `
[sync]
workers = 2
retention = "48h"

[[repos]]
path = "/srv/dotfiles/base"

[[repos]]
name = "work"
path = "work-dots"
kind = "git"
active = ["dots", "laptop"]
read_only = true
enabled = false
`)

	cfg, err := Load(p, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Sync.Workers)
	assert.Equal(t, 48*time.Hour, cfg.Sync.Retention)
	require.Len(t, cfg.Repos, 2)

	base := cfg.Repos[0]
	assert.Empty(t, base.Name)
	assert.Equal(t, "base", base.DefaultName())
	assert.Equal(t, "/srv/dotfiles/base", base.Path)
	assert.Equal(t, types.RepoKindFolder, base.RepoKind())
	assert.True(t, base.IsEnabled())

	work := cfg.Repos[1]
	assert.Equal(t, "work", work.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "work-dots"), work.Path)
	assert.Equal(t, types.RepoKindGit, work.RepoKind())
	assert.Equal(t, []string{"dots", "laptop"}, work.Active)
	assert.True(t, work.ReadOnly)
	assert.False(t, work.IsEnabled())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	p := setupPaths(t)
	writeConfig(t, p, "[sync]\nworkers = 2\n")
	t.Setenv("DOTSYNC_SYNC_WORKERS", "8")
	t.Setenv("DOTSYNC_SYNC_AUTO_PRUNE", "true")

	cfg, err := Load(p, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Sync.Workers)
	assert.True(t, cfg.Sync.AutoPrune)
}

func TestLoad_Overrides(t *testing.T) {
	p := setupPaths(t)

	cfg, err := Load(p, LoadOptions{Overrides: map[string]interface{}{"sync.workers": 1}})
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Sync.Workers)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	p := setupPaths(t)
	other := filepath.Join(t.TempDir(), "other.toml")
	require.NoError(t, os.WriteFile(other, []byte("[[repos]]\npath = \"/r/one\"\n"), 0644))

	cfg, err := Load(p, LoadOptions{ConfigFile: other})
	require.NoError(t, err)
	require.Len(t, cfg.Repos, 1)
	assert.Equal(t, "one", cfg.Repos[0].DefaultName())
}

func TestLoad_MalformedFileIsConfigError(t *testing.T) {
	p := setupPaths(t)
	writeConfig(t, p, "[sync\nworkers = ")

	_, err := Load(p, LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	assert.True(t, errors.IsFatal(err))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Sync:  Sync{Workers: 1, Retention: time.Hour},
			Repos: []RepoEntry{{Name: "a", Path: "/a"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero workers", func(c *Config) { c.Sync.Workers = 0 }},
		{"zero retention", func(c *Config) { c.Sync.Retention = 0 }},
		{"missing path", func(c *Config) { c.Repos[0].Path = "" }},
		{"bad name", func(c *Config) { c.Repos[0].Name = "a/b" }},
		{"duplicate name", func(c *Config) { c.Repos = append(c.Repos, RepoEntry{Name: "a", Path: "/b"}) }},
		{"duplicate derived name", func(c *Config) { c.Repos = append(c.Repos, RepoEntry{Path: "/x/a"}) }},
		{"unknown kind", func(c *Config) { c.Repos[0].Kind = "svn" }},
		{"bad active", func(c *Config) { c.Repos[0].Active = []string{".."} }},
	}

	require.NoError(t, Validate(valid()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := Validate(c)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "sync.auto_prune", envKey("DOTSYNC_SYNC_AUTO_PRUNE"))
	assert.Equal(t, "security.protected_paths", envKey("DOTSYNC_SECURITY_PROTECTED_PATHS"))
	assert.Equal(t, "home", envKey("DOTSYNC_HOME"))
	assert.Equal(t, "", envKey("DOTSYNC_DATA_DIR"))
	assert.Equal(t, "", envKey("DOTSYNC_CONFIG"))
}
