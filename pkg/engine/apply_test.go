// pkg/engine/apply_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: Real filesystem in a temp directory, SQLite hash store
// PURPOSE: Test apply against the sync guarantees: idempotence, safety,
// precedence, unit atomicity and ignore enforcement

package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/engine"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/arthur-debert/dotsync/pkg/testutil/testenv"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleRepo(t *testing.T, files testutil.FileTree) *testenv.TestEnvironment {
	t.Helper()
	env := testenv.NewTestEnvironment(t)
	env.AddRepo(testenv.RepoSpec{
		Name: "main",
		Dirs: map[string]testutil.FileTree{"dots": files},
	})
	return env
}

func entryFor(t *testing.T, r *types.Report, target string) types.ReportEntry {
	t.Helper()
	e, ok := r.Entry(target)
	require.True(t, ok, "no report entry for %s", target)
	return e
}

func TestApply_FreshHome(t *testing.T) {
	ctx := context.Background()
	env := singleRepo(t, testutil.FileTree{".bashrc": "echo hi"})

	report, err := env.Engine().Apply(ctx)
	require.NoError(t, err)

	assert.Equal(t, types.OutcomeCreated, entryFor(t, report, env.Home(".bashrc")).Outcome)
	assert.Equal(t, "echo hi", env.ReadHome(".bashrc"))

	hash := testutil.GetTestChecksum("echo hi")

	srcRecords, err := env.Store.Records(ctx, env.Source("main", "dots", ".bashrc"))
	require.NoError(t, err)
	require.Len(t, srcRecords, 1)
	assert.Equal(t, hash, srcRecords[0].Hash)
	assert.Equal(t, types.SourceFile, srcRecords[0].Kind)

	tgtRecords, err := env.Store.Records(ctx, env.Home(".bashrc"))
	require.NoError(t, err)
	require.Len(t, tgtRecords, 1)
	assert.Equal(t, hash, tgtRecords[0].Hash)
	assert.Equal(t, types.TargetFile, tgtRecords[0].Kind)
}

func TestApply_UserEditIsPreserved(t *testing.T) {
	ctx := context.Background()
	env := singleRepo(t, testutil.FileTree{".bashrc": "echo hi"})

	_, err := env.Engine().Apply(ctx)
	require.NoError(t, err)

	env.EditHome(".bashrc", "echo modified")

	report, err := env.Engine().Apply(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeModified, entryFor(t, report, env.Home(".bashrc")).Outcome)
	assert.Equal(t, "echo modified", env.ReadHome(".bashrc"))

	status, err := env.Engine().Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeModified, entryFor(t, status, env.Home(".bashrc")).Outcome)
}

func TestApply_AfterAddingEditIsUnchanged(t *testing.T) {
	ctx := context.Background()
	env := singleRepo(t, testutil.FileTree{".bashrc": "echo hi"})

	_, err := env.Engine().Apply(ctx)
	require.NoError(t, err)
	env.EditHome(".bashrc", "echo modified")
	_, err = env.Engine().Apply(ctx)
	require.NoError(t, err)

	added, err := env.Engine().Add(ctx, env.Home(".bashrc"), engine.AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeUpdated, entryFor(t, added, env.Home(".bashrc")).Outcome)
	assert.Equal(t, "echo modified", env.ReadSource("main", "dots", ".bashrc"))

	report, err := env.Engine().Apply(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeUnchanged, entryFor(t, report, env.Home(".bashrc")).Outcome)
	assert.Equal(t, "echo modified", env.ReadHome(".bashrc"))
}

func TestApply_LaterRepoWins(t *testing.T) {
	env := testenv.NewTestEnvironment(t)
	env.AddRepo(testenv.RepoSpec{
		Name: "base",
		Dirs: map[string]testutil.FileTree{"dots": {
			".config": testutil.FileTree{"theme": testutil.FileTree{"colors.conf": "base colors"}},
		}},
	})
	env.AddRepo(testenv.RepoSpec{
		Name: "work",
		Dirs: map[string]testutil.FileTree{"dots": {
			".config": testutil.FileTree{"theme": testutil.FileTree{"colors.conf": "work colors"}},
		}},
	})

	report, err := env.Engine().Apply(context.Background())
	require.NoError(t, err)

	entry := entryFor(t, report, env.Home(".config/theme/colors.conf"))
	assert.Equal(t, types.OutcomeCreated, entry.Outcome)
	assert.Equal(t, "work", entry.Repo)
	assert.Equal(t, "work colors", env.ReadHome(".config/theme/colors.conf"))
}

func TestApply_NewHigherPriorityRepoReplacesPlacedContent(t *testing.T) {
	ctx := context.Background()
	env := testenv.NewTestEnvironment(t)
	env.AddRepo(testenv.RepoSpec{
		Name: "base",
		Dirs: map[string]testutil.FileTree{"dots": {
			".config": testutil.FileTree{"theme": testutil.FileTree{"colors.conf": "base colors"}},
		}},
	})

	_, err := env.Engine().Apply(ctx)
	require.NoError(t, err)
	require.Equal(t, "base colors", env.ReadHome(".config/theme/colors.conf"))

	env.AddRepo(testenv.RepoSpec{
		Name: "work",
		Dirs: map[string]testutil.FileTree{"dots": {
			".config": testutil.FileTree{"theme": testutil.FileTree{"colors.conf": "work colors"}},
		}},
	})

	report, err := env.Engine().Apply(ctx)
	require.NoError(t, err)

	entry := entryFor(t, report, env.Home(".config/theme/colors.conf"))
	assert.Equal(t, types.OutcomeUpdated, entry.Outcome)
	assert.Equal(t, "work", entry.Repo)
	assert.Equal(t, "work colors", env.ReadHome(".config/theme/colors.conf"))
}

func TestApply_LaterActiveSubdirWins(t *testing.T) {
	env := testenv.NewTestEnvironment(t)
	env.AddRepo(testenv.RepoSpec{
		Name: "main",
		Dirs: map[string]testutil.FileTree{
			"common": {".profile": "common", ".inputrc": "keys"},
			"linux":  {".profile": "linux"},
		},
		Active: []string{"common", "linux"},
	})

	_, err := env.Engine().Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "linux", env.ReadHome(".profile"))
	assert.Equal(t, "keys", env.ReadHome(".inputrc"))
}

func TestApply_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := singleRepo(t, testutil.FileTree{
		".bashrc": "echo hi",
		".vim":    testutil.FileTree{"vimrc": "set nu"},
	})

	first, err := env.Engine().Apply(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Count(types.OutcomeCreated))

	second, err := env.Engine().Apply(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Count(types.OutcomeCreated))
	assert.Equal(t, 0, second.Count(types.OutcomeUpdated))
	assert.Equal(t, 2, second.Count(types.OutcomeUnchanged))
	assert.Equal(t, "set nu", env.ReadHome(".vim/vimrc"))
}

func TestApply_SourceChangeUpdatesUnmodifiedTarget(t *testing.T) {
	ctx := context.Background()
	env := singleRepo(t, testutil.FileTree{".bashrc": "v1"})

	_, err := env.Engine().Apply(ctx)
	require.NoError(t, err)

	env.EditSource("main", "dots", ".bashrc", "v2")

	status, err := env.Engine().Status(ctx)
	require.NoError(t, err)
	entry := entryFor(t, status, env.Home(".bashrc"))
	assert.Equal(t, types.OutcomeUnchanged, entry.Outcome)
	assert.Contains(t, entry.Detail, "apply will update")

	report, err := env.Engine().Apply(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeUpdated, entryFor(t, report, env.Home(".bashrc")).Outcome)
	assert.Equal(t, "v2", env.ReadHome(".bashrc"))
}

func TestApply_ForeignFileInHome(t *testing.T) {
	ctx := context.Background()
	env := singleRepo(t, testutil.FileTree{".bashrc": "from repo", ".zshrc": "same"})
	testutil.CreateFileT(t, env.FS, env.Home(".bashrc"), "hand written")
	testutil.CreateFileT(t, env.FS, env.Home(".zshrc"), "same")

	report, err := env.Engine().Apply(ctx)
	require.NoError(t, err)

	assert.Equal(t, types.OutcomeModified, entryFor(t, report, env.Home(".bashrc")).Outcome)
	assert.Equal(t, "hand written", env.ReadHome(".bashrc"))
	assert.Equal(t, types.OutcomeUnchanged, entryFor(t, report, env.Home(".zshrc")).Outcome)
}

func TestApply_UnitIsBlockedByModifiedMember(t *testing.T) {
	ctx := context.Background()
	env := testenv.NewTestEnvironment(t)
	env.AddRepo(testenv.RepoSpec{
		Name: "main",
		Dirs: map[string]testutil.FileTree{"dots": {
			".config": testutil.FileTree{"nvim": testutil.FileTree{
				"init.vim": "init v1",
				"lua":      testutil.FileTree{"plugins.lua": "plugins v1"},
			}},
			".bashrc": "bash v1",
		}},
		Units: []string{".config/nvim"},
	})

	_, err := env.Engine().Apply(ctx)
	require.NoError(t, err)

	env.EditHome(".config/nvim/init.vim", "my init")
	env.EditSource("main", "dots", ".config/nvim/init.vim", "init v2")
	env.EditSource("main", "dots", ".config/nvim/lua/plugins.lua", "plugins v2")
	env.EditSource("main", "dots", ".bashrc", "bash v2")

	report, err := env.Engine().Apply(ctx)
	require.NoError(t, err)

	assert.Equal(t, types.OutcomeModified, entryFor(t, report, env.Home(".config/nvim/init.vim")).Outcome)
	blocked := entryFor(t, report, env.Home(".config/nvim/lua/plugins.lua"))
	assert.Equal(t, types.OutcomeUnitBlocked, blocked.Outcome)
	assert.Contains(t, blocked.Detail, "main:.config/nvim")

	assert.Equal(t, "my init", env.ReadHome(".config/nvim/init.vim"))
	assert.Equal(t, "plugins v1", env.ReadHome(".config/nvim/lua/plugins.lua"))

	// Files outside the unit are not affected
	assert.Equal(t, types.OutcomeUpdated, entryFor(t, report, env.Home(".bashrc")).Outcome)
	assert.Equal(t, "bash v2", env.ReadHome(".bashrc"))
}

func TestApply_IgnoredPathsAreNeverWritten(t *testing.T) {
	ctx := context.Background()
	env := singleRepo(t, testutil.FileTree{
		".bashrc": "v1",
		".local":  testutil.FileTree{"bin": testutil.FileTree{"tool": "#!/bin/sh"}},
	})

	_, err := env.Engine().IgnoreAdd(env.Home(".bashrc"), false)
	require.NoError(t, err)
	_, err = env.Engine().IgnoreAdd(env.Home(".local"), true)
	require.NoError(t, err)

	report, err := env.Engine().Apply(ctx)
	require.NoError(t, err)

	assert.Equal(t, types.OutcomeIgnored, entryFor(t, report, env.Home(".bashrc")).Outcome)
	assert.Equal(t, types.OutcomeIgnored, entryFor(t, report, env.Home(".local/bin/tool")).Outcome)
	assert.False(t, testutil.FileExists(env.FS, env.Home(".bashrc")))
	assert.False(t, testutil.FileExists(env.FS, env.Home(".local/bin/tool")))
}

func TestApply_ProtectedTargetIsRefused(t *testing.T) {
	ctx := context.Background()
	env := singleRepo(t, testutil.FileTree{".ssh": "not a directory", ".bashrc": "ok"})

	report, err := env.Engine().Apply(ctx)
	require.NoError(t, err)

	entry := entryFor(t, report, env.Home(".ssh"))
	assert.Equal(t, types.OutcomeError, entry.Outcome)
	assert.Equal(t, string(errors.ErrUnsafeTarget), entry.Code)
	assert.False(t, testutil.FileExists(env.FS, env.Home(".ssh")))

	assert.Equal(t, types.OutcomeCreated, entryFor(t, report, env.Home(".bashrc")).Outcome)
	assert.True(t, report.HasErrors())
}

func TestApply_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	env := singleRepo(t, testutil.FileTree{".bashrc": "echo hi"})

	e := env.Engine(func(o *engine.Options) { o.DryRun = true })
	report, err := e.Apply(ctx)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	entry := entryFor(t, report, env.Home(".bashrc"))
	assert.Equal(t, types.OutcomeCreated, entry.Outcome)
	assert.Equal(t, "dry run", entry.Detail)
	assert.False(t, testutil.FileExists(env.FS, env.Home(".bashrc")))

	records, err := env.Store.Records(ctx, env.Source("main", "dots", ".bashrc"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestApply_CancelledContext(t *testing.T) {
	env := singleRepo(t, testutil.FileTree{".bashrc": "echo hi"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := env.Engine().Apply(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
	require.NotNil(t, report)
	assert.False(t, testutil.FileExists(env.FS, env.Home(".bashrc")))
}

func TestApply_SkippedRepoIsReportedAsWarning(t *testing.T) {
	env := testenv.NewTestEnvironment(t)
	broken := env.AddRepo(testenv.RepoSpec{
		Name: "broken",
		Kind: types.RepoKindGit,
		Dirs: map[string]testutil.FileTree{"dots": {".gitconfig": "x"}},
	})
	require.NoError(t, os.RemoveAll(filepath.Join(broken, ".git")))
	env.AddRepo(testenv.RepoSpec{
		Name: "main",
		Dirs: map[string]testutil.FileTree{"dots": {".bashrc": "echo hi"}},
	})

	report, err := env.Engine().Apply(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "broken")
	assert.Equal(t, "echo hi", env.ReadHome(".bashrc"))
	assert.False(t, testutil.FileExists(env.FS, env.Home(".gitconfig")))
}

func TestApply_AutoPrune(t *testing.T) {
	env := singleRepo(t, testutil.FileTree{".bashrc": "echo hi"})

	e := env.Engine(func(o *engine.Options) { o.AutoPrune = true })
	report, err := e.Apply(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Notes, 1)
	assert.Contains(t, report.Notes[0], "pruned 0 expired target hash record(s)")
}
