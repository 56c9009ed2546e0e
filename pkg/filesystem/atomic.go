package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/dotsync/pkg/types"
)

// tempSuffix marks in-flight files so a crash leaves them recognisable
const tempSuffix = ".dotsync-tmp"

var tempCounter atomic.Uint64

// IsTempFile reports whether name is an in-flight temp file left by AtomicWriteFile
func IsTempFile(name string) bool {
	return filepath.Ext(name) == tempSuffix
}

// AtomicWriteFile writes data to a temp file next to path and renames it into
// place. Readers observe either the old or the new content, never a mix.
func AtomicWriteFile(fsys types.FS, path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+
		strconv.FormatInt(time.Now().UnixNano(), 36)+"-"+
		strconv.FormatUint(tempCounter.Add(1), 36)+tempSuffix)

	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to move temp file into place: %w", err)
	}
	return nil
}

// CopyFile atomically copies src to dst, keeping the source permissions.
// It returns the bytes written.
func CopyFile(fsys types.FS, src, dst string) ([]byte, error) {
	info, err := fsys.Stat(src)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "copy", Path: src, Err: fs.ErrInvalid}
	}
	data, err := fsys.ReadFile(src)
	if err != nil {
		return nil, err
	}
	if err := AtomicWriteFile(fsys, dst, data, info.Mode().Perm()); err != nil {
		return nil, err
	}
	return data, nil
}

// Exists reports whether path exists. Errors other than "not exist" are returned.
func Exists(fsys types.FS, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
