package paths

import (
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
)

// ValidatePath performs basic validation on a path.
// It checks for empty paths, null bytes and excessive length.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}

	// Check path length (common filesystem limit)
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}

	return nil
}

// ValidateDirName ensures a repo or dots directory name is a single path
// segment. Names must:
// - Not be empty
// - Not contain path separators
// - Not be reserved names (. or ..)
func ValidateDirName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return errors.Newf(errors.ErrInvalidInput, "name %q cannot contain path separators", name)
	}

	if name == "." || name == ".." {
		return errors.New(errors.ErrInvalidInput, "name cannot be '.' or '..'")
	}

	invalidChars := ":*?\"<>|"
	if strings.ContainsAny(name, invalidChars) {
		return errors.Newf(errors.ErrInvalidInput,
			"name %q contains invalid characters: %s", name, invalidChars)
	}

	return nil
}
