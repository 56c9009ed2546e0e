// pkg/paths/paths_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Environment variables, temp directories
// PURPOSE: Test path resolution, XDG overrides and the safety guard

package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ExplicitHome(t *testing.T) {
	home := t.TempDir()
	data := t.TempDir()
	t.Setenv(EnvDotsyncDataDir, data)
	t.Setenv(EnvDotsyncConfigDir, "")
	t.Setenv(EnvDotsyncConfig, "")

	p, err := New(home)
	require.NoError(t, err)

	assert.Equal(t, home, p.HomeDir())
	assert.Equal(t, data, p.DataDir())
	assert.Equal(t, filepath.Join(data, HashStoreFileName), p.HashStorePath())
	assert.Equal(t, filepath.Join(data, IgnoreListFileName), p.IgnoreListPath())
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envSetup map[string]string
		check    func(t *testing.T, p Paths, env map[string]string)
	}{
		{
			name:     "DOTSYNC_HOME used when no home given",
			envSetup: map[string]string{EnvDotsyncHome: "/tmp/dotsync-home"},
			check: func(t *testing.T, p Paths, env map[string]string) {
				assert.Equal(t, "/tmp/dotsync-home", p.HomeDir())
			},
		},
		{
			name:     "XDG_DATA_HOME respected",
			envSetup: map[string]string{"XDG_DATA_HOME": "/tmp/xdg-data", EnvDotsyncDataDir: ""},
			check: func(t *testing.T, p Paths, env map[string]string) {
				assert.Equal(t, "/tmp/xdg-data/dotsync", p.DataDir())
			},
		},
		{
			name:     "config dir override",
			envSetup: map[string]string{EnvDotsyncConfigDir: "/tmp/cfg", EnvDotsyncConfig: ""},
			check: func(t *testing.T, p Paths, env map[string]string) {
				assert.Equal(t, "/tmp/cfg", p.ConfigDir())
				assert.Equal(t, "/tmp/cfg/config.toml", p.ConfigFilePath())
			},
		},
		{
			name:     "explicit config file",
			envSetup: map[string]string{EnvDotsyncConfig: "/tmp/elsewhere.toml"},
			check: func(t *testing.T, p Paths, env map[string]string) {
				assert.Equal(t, "/tmp/elsewhere.toml", p.ConfigFilePath())
			},
		},
		{
			name:     "state dir override",
			envSetup: map[string]string{EnvDotsyncStateDir: "/tmp/state"},
			check: func(t *testing.T, p Paths, env map[string]string) {
				assert.Equal(t, "/tmp/state/dotsync.log", p.LogFilePath())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}

			p, err := New("")
			require.NoError(t, err)
			tt.check(t, p, tt.envSetup)
		})
	}
}

func TestNormalizePath(t *testing.T) {
	p, err := New("/home/alice")
	require.NoError(t, err)

	got, err := p.NormalizePath("~/.bashrc")
	require.NoError(t, err)
	assert.Equal(t, "/home/alice/.bashrc", got)

	got, err = p.NormalizePath("~")
	require.NoError(t, err)
	assert.Equal(t, "/home/alice", got)

	got, err = p.NormalizePath("/home/alice/./x/../.vimrc")
	require.NoError(t, err)
	assert.Equal(t, "/home/alice/.vimrc", got)

	_, err = p.NormalizePath("")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestExpandUnder(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"empty is home", "", "/home/alice"},
		{"tilde", "~", "/home/alice"},
		{"tilde slash", "~/.config/nvim", "/home/alice/.config/nvim"},
		{"other user is not expanded", "/srv/~bob", "/srv/~bob"},
		{"cleaned", "/home/alice/a/../.zshrc", "/home/alice/.zshrc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandUnder("/home/alice", tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	cwd, err := os.Getwd()
	require.NoError(t, err)
	got, err := ExpandUnder("/home/alice", "rel/file")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "rel/file"), got)
}

func TestRelToHome(t *testing.T) {
	p, err := New("/home/alice")
	require.NoError(t, err)

	rel, ok := p.RelToHome("/home/alice/.config/nvim/init.lua")
	assert.True(t, ok)
	assert.Equal(t, ".config/nvim/init.lua", rel)

	rel, ok = p.RelToHome("/home/alice")
	assert.True(t, ok)
	assert.Equal(t, ".", rel)

	_, ok = p.RelToHome("/home/alice2/.bashrc")
	assert.False(t, ok)

	_, ok = p.RelToHome("/etc/passwd")
	assert.False(t, ok)
}

func TestExpandHome(t *testing.T) {
	home, err := GetHomeDirectory()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "x"), ExpandHome("~/x"))
	assert.Equal(t, "~bob/x", ExpandHome("~bob/x"))
	assert.Equal(t, "/abs", ExpandHome("/abs"))
	assert.Equal(t, "", ExpandHome(""))
}

func TestGuard_Check(t *testing.T) {
	g := NewGuard("/home/alice", DefaultProtectedPaths)

	tests := []struct {
		name   string
		target string
		unsafe bool
	}{
		{"regular dotfile", "/home/alice/.bashrc", false},
		{"file inside protected dir", "/home/alice/.config/nvim/init.lua", false},
		{"ssh dir itself", "/home/alice/.ssh", true},
		{"config dir itself", "/home/alice/.config/", true},
		{"home itself", "/home/alice", true},
		{"outside home", "/etc/hosts", true},
		{"sibling prefix", "/home/alice2/.bashrc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Check(tt.target)
			if tt.unsafe {
				assert.True(t, errors.IsErrorCode(err, errors.ErrUnsafeTarget), "expected unsafe: %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGuard_CustomProtected(t *testing.T) {
	g := NewGuard("/home/alice", []string{"~/.aws", ""})

	assert.Error(t, g.Check("/home/alice/.aws"))
	assert.NoError(t, g.Check("/home/alice/.ssh"))
}

func TestValidateDirName(t *testing.T) {
	assert.NoError(t, ValidateDirName("dots"))
	assert.Error(t, ValidateDirName(""))
	assert.Error(t, ValidateDirName(".."))
	assert.Error(t, ValidateDirName("a/b"))
	assert.Error(t, ValidateDirName("a:b"))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath("/x"))
	assert.Error(t, ValidatePath(""))
	assert.Error(t, ValidatePath("a\x00b"))
}
