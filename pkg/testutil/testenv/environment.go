// pkg/testutil/testenv/environment.go
// DEPENDENCIES: config, repos, hashstore, ignore, engine
// PURPOSE: Orchestrate isolated engine test environments

// Package testenv builds complete dotsync environments on the real
// filesystem: a temp home, a data directory, any number of repos and an
// engine wired to a real hash store.
package testenv

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/engine"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/hashstore"
	"github.com/arthur-debert/dotsync/pkg/ignore"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/repos"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/arthur-debert/dotsync/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
)

// TestEnvironment provides a complete test environment with all dependencies
type TestEnvironment struct {
	// Core paths
	HomeDir  string
	ReposDir string
	DataDir  string

	// Core dependencies
	FS       types.FS
	Store    *hashstore.Store
	Ignore   *ignore.List
	Prompter *FakePrompter

	t       *testing.T
	entries []config.RepoEntry
}

// RepoSpec describes a repo to create
type RepoSpec struct {
	Name string
	Kind types.RepoKind

	// Dirs maps each dots subdirectory to its content. Subdirectories are
	// declared in sorted order unless Declared is set.
	Dirs     map[string]testutil.FileTree
	Declared []string
	Active   []string

	Units    []string
	Ignore   []string
	ReadOnly bool
	Disabled bool
}

// NewTestEnvironment creates an isolated environment under t.TempDir()
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	base := t.TempDir()
	env := &TestEnvironment{
		HomeDir:  filepath.Join(base, "home"),
		ReposDir: filepath.Join(base, "repos"),
		DataDir:  filepath.Join(base, "data"),
		FS:       filesystem.NewOS(),
		Prompter: &FakePrompter{},
		t:        t,
	}
	for _, dir := range []string{env.HomeDir, env.ReposDir, env.DataDir} {
		testutil.CreateDirT(t, env.FS, dir)
	}

	t.Setenv(paths.EnvDotsyncHome, env.HomeDir)
	t.Setenv(paths.EnvDotsyncDataDir, env.DataDir)

	store, err := hashstore.Open(context.Background(), env.FS, filepath.Join(env.DataDir, paths.HashStoreFileName))
	if err != nil {
		t.Fatalf("Failed to open hash store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	env.Store = store

	list, err := ignore.Load(env.FS, filepath.Join(env.DataDir, paths.IgnoreListFileName))
	if err != nil {
		t.Fatalf("Failed to load ignore list: %v", err)
	}
	env.Ignore = list

	return env
}

// AddRepo creates a repo and appends it to the configuration, giving it
// the highest priority so far. It returns the repo root.
func (env *TestEnvironment) AddRepo(spec RepoSpec) string {
	env.t.Helper()

	root := filepath.Join(env.ReposDir, spec.Name)
	testutil.CreateDirT(env.t, env.FS, root)
	if spec.Kind == types.RepoKindGit {
		testutil.CreateDirT(env.t, env.FS, filepath.Join(root, ".git"))
	}

	declared := spec.Declared
	if len(declared) == 0 {
		declared = sortedKeys(spec.Dirs)
	}
	for _, dir := range declared {
		testutil.CreateDirT(env.t, env.FS, filepath.Join(root, dir))
		if tree, ok := spec.Dirs[dir]; ok {
			testutil.CreateFileTree(env.t, env.FS, filepath.Join(root, dir), tree)
		}
	}

	meta := repos.Metadata{
		DotsDirs: declared,
		Units:    spec.Units,
		Ignore:   spec.Ignore,
	}
	data, err := toml.Marshal(meta)
	if err != nil {
		env.t.Fatalf("Failed to encode repo metadata: %v", err)
	}
	testutil.CreateFileT(env.t, env.FS, filepath.Join(root, paths.RepoMetadataFile), string(data))

	entry := config.RepoEntry{
		Name:     spec.Name,
		Path:     root,
		Kind:     string(spec.Kind),
		Active:   spec.Active,
		ReadOnly: spec.ReadOnly,
	}
	if spec.Disabled {
		disabled := false
		entry.Enabled = &disabled
	}
	env.entries = append(env.entries, entry)
	return root
}

// Engine resolves the configured repos and returns a fresh engine. Each
// call sees the repos as they are on disk now.
func (env *TestEnvironment) Engine(opts ...func(*engine.Options)) *engine.Engine {
	env.t.Helper()

	result, err := repos.Resolve(env.FS, env.entries)
	if err != nil {
		env.t.Fatalf("Failed to resolve repos: %v", err)
	}

	options := engine.Options{
		FS:           env.FS,
		Home:         env.HomeDir,
		Repos:        result.Repos,
		RepoWarnings: result.Skipped,
		Store:        env.Store,
		Ignore:       env.Ignore,
		Prompter:     env.Prompter,
		Workers:      2,
		Retention:    time.Hour,
	}
	for _, opt := range opts {
		opt(&options)
	}

	e, err := engine.New(options)
	if err != nil {
		env.t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

// Home returns the absolute path of rel inside the home directory
func (env *TestEnvironment) Home(rel string) string {
	return filepath.Join(env.HomeDir, rel)
}

// Source returns the absolute path of rel inside a repo's dots subdirectory
func (env *TestEnvironment) Source(repo, subdir, rel string) string {
	return filepath.Join(env.ReposDir, repo, subdir, rel)
}

// ReadHome returns the content of a home file
func (env *TestEnvironment) ReadHome(rel string) string {
	env.t.Helper()
	return testutil.ReadFileT(env.t, env.FS, env.Home(rel))
}

// ReadSource returns the content of a repo file
func (env *TestEnvironment) ReadSource(repo, subdir, rel string) string {
	env.t.Helper()
	return testutil.ReadFileT(env.t, env.FS, env.Source(repo, subdir, rel))
}

// EditHome writes a home file the way a user would. The mtime is moved
// forward so the change is visible even on filesystems with coarse
// timestamps.
func (env *TestEnvironment) EditHome(rel, content string) {
	env.t.Helper()
	env.edit(env.Home(rel), content)
}

// EditSource changes a repo file, as a pull from upstream would
func (env *TestEnvironment) EditSource(repo, subdir, rel, content string) {
	env.t.Helper()
	env.edit(env.Source(repo, subdir, rel), content)
}

func (env *TestEnvironment) edit(path, content string) {
	env.t.Helper()
	testutil.CreateFileT(env.t, env.FS, path, content)
	future := time.Now().Add(5 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		env.t.Fatalf("Failed to touch %s: %v", path, err)
	}
}

func sortedKeys(m map[string]testutil.FileTree) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
