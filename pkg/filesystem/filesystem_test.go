// pkg/filesystem/filesystem_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: OS filesystem (temp dirs), afero memory filesystem
// PURPOSE: Test FS implementations and atomic write helpers

package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS(t *testing.T) {
	fs := filesystem.NewOS()
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	require.NoError(t, fs.WriteFile(testFile, []byte("hello world"), 0644))

	info, err := fs.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "test.txt", info.Name())

	content, err := fs.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))

	require.NoError(t, fs.MkdirAll(filepath.Join(tmpDir, "sub", "dir"), 0755))
	entries, err := fs.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	renamed := filepath.Join(tmpDir, "renamed.txt")
	require.NoError(t, fs.Rename(testFile, renamed))
	_, err = fs.Stat(testFile)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, fs.Remove(renamed))
}

func TestAtomicWriteFile(t *testing.T) {
	for name, fsys := range map[string]types.FS{
		"os":     filesystem.NewOS(),
		"memory": filesystem.NewMemoryFS(),
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			target := filepath.Join(dir, "nested", "deeper", ".bashrc")

			require.NoError(t, filesystem.AtomicWriteFile(fsys, target, []byte("echo one"), 0600))
			require.NoError(t, filesystem.AtomicWriteFile(fsys, target, []byte("echo two"), 0600))

			content, err := fsys.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, "echo two", string(content))

			entries, err := fsys.ReadDir(filepath.Dir(target))
			require.NoError(t, err)
			require.Len(t, entries, 1, "no temp files should be left behind")
			assert.False(t, filesystem.IsTempFile(entries[0].Name()))
		})
	}
}

func TestCopyFile(t *testing.T) {
	fsys := filesystem.NewOS()
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "run.sh")
	dst := filepath.Join(dir, "dst", "run.sh")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0755))

	data, err := filesystem.CopyFile(fsys, src, dst)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	_, err = filesystem.CopyFile(fsys, filepath.Join(dir, "src"), dst)
	assert.Error(t, err, "copying a directory should fail")
}

func TestExists(t *testing.T) {
	fsys := filesystem.NewMemoryFS()
	require.NoError(t, fsys.WriteFile("/a/file", []byte("x"), 0644))

	ok, err := filesystem.Exists(fsys, "/a/file")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = filesystem.Exists(fsys, "/a/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsTempFile(t *testing.T) {
	assert.True(t, filesystem.IsTempFile(".bashrc.abc-1.dotsync-tmp"))
	assert.False(t, filesystem.IsTempFile(".bashrc"))
}
