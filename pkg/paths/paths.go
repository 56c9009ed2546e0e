package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotsync/pkg/errors"
)

// Environment variable names
const (
	// EnvDotsyncHome overrides the home directory dotfiles are applied to
	EnvDotsyncHome = "DOTSYNC_HOME"

	// EnvDotsyncConfig points at an explicit configuration file
	EnvDotsyncConfig = "DOTSYNC_CONFIG"

	// EnvDotsyncDataDir overrides the XDG data directory for dotsync
	EnvDotsyncDataDir = "DOTSYNC_DATA_DIR"

	// EnvDotsyncConfigDir overrides the XDG config directory for dotsync
	EnvDotsyncConfigDir = "DOTSYNC_CONFIG_DIR"

	// EnvDotsyncStateDir overrides the XDG state directory for dotsync
	EnvDotsyncStateDir = "DOTSYNC_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files. These define dotsync's internal layout and
// are not user-configurable.
const (
	// DotsyncDirName is the directory name for dotsync-specific files
	DotsyncDirName = "dotsync"

	// ConfigFileName is the user configuration file inside the config dir
	ConfigFileName = "config.toml"

	// RepoMetadataFile is the per-repo declared metadata file
	RepoMetadataFile = ".dotsync.toml"

	// HashStoreFileName is the SQLite database holding hash records
	HashStoreFileName = "hashes.db"

	// IgnoreListFileName is the persisted ignore list
	IgnoreListFileName = "ignore.yaml"

	// LogFileName is the name of the log file
	LogFileName = "dotsync.log"
)

// Paths provides centralized path management for dotsync
type Paths interface {
	HomeDir() string
	DataDir() string
	ConfigDir() string
	StateDir() string
	ConfigFilePath() string
	HashStorePath() string
	IgnoreListPath() string
	LogFilePath() string
	NormalizePath(path string) (string, error)
	RelToHome(path string) (string, bool)
}

type paths struct {
	home      string
	xdgData   string
	xdgConfig string
	xdgState  string
}

// New creates a new Paths instance. An empty home resolves DOTSYNC_HOME,
// then the user's home directory.
func New(home string) (Paths, error) {
	// Pick up environment changes made since process start (tests, wrappers)
	xdg.Reload()

	p := &paths{}

	if home == "" {
		home = os.Getenv(EnvDotsyncHome)
	}
	if home == "" {
		h, err := GetHomeDirectory()
		if err != nil {
			return nil, err
		}
		home = h
	}

	abs, err := filepath.Abs(expandHome(home))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for home directory")
	}
	p.home = filepath.Clean(abs)

	p.setupXDGDirs()
	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if dataDir := os.Getenv(EnvDotsyncDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, DotsyncDirName)
	}

	if configDir := os.Getenv(EnvDotsyncConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, DotsyncDirName)
	}

	if stateDir := os.Getenv(EnvDotsyncStateDir); stateDir != "" {
		p.xdgState = expandHome(stateDir)
	} else {
		p.xdgState = filepath.Join(xdg.StateHome, DotsyncDirName)
	}
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := GetHomeDirectory()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// ExpandHome is a utility function that expands ~ in paths
func ExpandHome(path string) string {
	return expandHome(path)
}

// HomeDir returns the home directory targets are rooted at
func (p *paths) HomeDir() string {
	return p.home
}

// DataDir returns the XDG data directory for dotsync
func (p *paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the XDG config directory for dotsync
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// StateDir returns the XDG state directory for dotsync
func (p *paths) StateDir() string {
	return p.xdgState
}

// ConfigFilePath returns the user configuration file, honouring DOTSYNC_CONFIG
func (p *paths) ConfigFilePath() string {
	if cfg := os.Getenv(EnvDotsyncConfig); cfg != "" {
		return expandHome(cfg)
	}
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

// HashStorePath returns the hash record database
func (p *paths) HashStorePath() string {
	return filepath.Join(p.xdgData, HashStoreFileName)
}

// IgnoreListPath returns the persisted ignore list
func (p *paths) IgnoreListPath() string {
	return filepath.Join(p.xdgData, IgnoreListFileName)
}

// LogFilePath returns the path to the dotsync log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// and cleaning it. A leading ~ expands to the configured home, not the
// process owner's.
func (p *paths) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}
	return ExpandUnder(p.home, path)
}

// ExpandUnder resolves "~" and "~/" against home and makes any other path
// absolute and clean. An empty path resolves to home.
func ExpandUnder(home, path string) (string, error) {
	switch {
	case path == "" || path == "~":
		return home, nil
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:]), nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "invalid path").WithDetail("path", path)
	}
	return filepath.Clean(abs), nil
}

// RelToHome returns path relative to the home directory, and false when the
// path lies outside it
func (p *paths) RelToHome(path string) (string, bool) {
	return RelUnder(p.home, path)
}

// RelUnder returns path relative to root, and false when path is not root
// itself or nested below it
func RelUnder(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// IsUnder reports whether path equals root or is nested below it
func IsUnder(root, path string) bool {
	_, ok := RelUnder(root, path)
	return ok
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}
