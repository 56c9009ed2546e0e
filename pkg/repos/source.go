package repos

import (
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Source is a repo working copy on disk
type Source interface {
	Kind() types.RepoKind
	// Root is the working copy directory dots subdirectories live under
	Root() string
	// Check verifies the working copy is usable
	Check(fs types.FS) error
}

// NewSource returns the Source variant for kind
func NewSource(kind types.RepoKind, root string) (Source, error) {
	switch kind {
	case types.RepoKindFolder, "":
		return folderSource{root: root}, nil
	case types.RepoKindGit:
		return gitSource{folderSource{root: root}}, nil
	}
	return nil, errors.Newf(errors.ErrConfigInvalid, "unknown repo kind %q", kind).
		WithDetail("path", root)
}

type folderSource struct {
	root string
}

func (s folderSource) Kind() types.RepoKind { return types.RepoKindFolder }
func (s folderSource) Root() string         { return s.root }

func (s folderSource) Check(fs types.FS) error {
	info, err := fs.Stat(s.root)
	if err != nil {
		return errors.Wrap(err, errors.ErrRepoState, "working copy does not exist").
			WithDetail("path", s.root)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrRepoState, "working copy is not a directory").
			WithDetail("path", s.root)
	}
	return nil
}

// gitSource is a working copy managed by git. Cloning and pulling happen
// elsewhere; dotsync only requires the checkout to exist.
type gitSource struct {
	folderSource
}

func (s gitSource) Kind() types.RepoKind { return types.RepoKindGit }

func (s gitSource) Check(fs types.FS) error {
	if err := s.folderSource.Check(fs); err != nil {
		return err
	}
	// .git is a directory for clones and a file for worktrees
	if _, err := fs.Stat(filepath.Join(s.root, ".git")); err != nil {
		return errors.Wrap(err, errors.ErrRepoState, "git working copy has no .git entry").
			WithDetail("path", s.root)
	}
	return nil
}
