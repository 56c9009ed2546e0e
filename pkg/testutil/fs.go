package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/types"
)

// FileTree represents a directory structure for testing. Values are either
// file contents (string) or nested FileTrees.
type FileTree map[string]interface{}

// CreateFileTree recursively creates a file tree under basePath
func CreateFileTree(t *testing.T, fs types.FS, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			CreateFileT(t, fs, fullPath, v)
		case FileTree:
			CreateDirT(t, fs, fullPath)
			CreateFileTree(t, fs, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// CreateFileT creates a file, and its parent directories, with the given content
func CreateFileT(t *testing.T, fs types.FS, path, content string) {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := fs.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
}

// CreateDirT creates a directory
func CreateDirT(t *testing.T, fs types.FS, path string) {
	t.Helper()

	if err := fs.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}
}

// ReadFileT returns a file's content, failing the test if it cannot be read
func ReadFileT(t *testing.T, fs types.FS, path string) string {
	t.Helper()

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// FileExists reports whether path exists
func FileExists(fs types.FS, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}
