package hashutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFileChecksum(t *testing.T) {
	fsys := filesystem.NewOS()
	path := filepath.Join(t.TempDir(), "checksum-test")
	testContent := "Hello, World!\nThis is a test file.\n"
	require.NoError(t, fsys.WriteFile(path, []byte(testContent), 0644))

	checksum, err := CalculateFileChecksum(fsys, path)
	require.NoError(t, err)

	assert.Contains(t, checksum, "sha256:")
	assert.Len(t, checksum, 71) // "sha256:" + 64 hex chars
	assert.Equal(t, ChecksumBytes([]byte(testContent)), checksum)

	_, err = CalculateFileChecksum(fsys, "/non/existent/file")
	assert.Error(t, err)
}

func TestCalculateFileChecksumWithEmptyFile(t *testing.T) {
	fsys := filesystem.NewMemoryFS()
	require.NoError(t, fsys.WriteFile("/empty", nil, 0644))

	checksum, err := CalculateFileChecksum(fsys, "/empty")
	require.NoError(t, err)

	expectedEmptyFileHash := "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	assert.Equal(t, expectedEmptyFileHash, checksum)
}
