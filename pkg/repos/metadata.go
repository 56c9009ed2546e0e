package repos

import (
	"os"
	"path"
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Metadata is a repo's declared layout, read from .dotsync.toml at the
// working copy root
type Metadata struct {
	Name     string   `toml:"name"`
	DotsDirs []string `toml:"dots_dirs"`
	Units    []string `toml:"units"`
	Ignore   []string `toml:"ignore"`
}

// LoadMetadata reads <root>/.dotsync.toml. A missing file yields the default
// layout (a single "dots" directory, no units).
func LoadMetadata(fs types.FS, root string) (Metadata, error) {
	metaPath := filepath.Join(root, paths.RepoMetadataFile)

	var meta Metadata
	data, err := fs.ReadFile(metaPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return meta, errors.Wrap(err, errors.ErrConfigLoad, "cannot read repo metadata").
				WithDetail("path", metaPath)
		}
	} else if err := toml.Unmarshal(data, &meta); err != nil {
		return meta, errors.Wrap(err, errors.ErrConfigParse, "malformed repo metadata").
			WithDetail("path", metaPath)
	}

	if len(meta.DotsDirs) == 0 {
		meta.DotsDirs = []string{types.DefaultDotsDir}
	}

	if err := meta.validate(); err != nil {
		return meta, err.WithDetail("path", metaPath)
	}
	return meta, nil
}

func (m Metadata) validate() *errors.DotsyncError {
	seen := make(map[string]bool)
	for _, d := range m.DotsDirs {
		if err := paths.ValidateDirName(d); err != nil {
			return errors.Wrapf(err, errors.ErrConfigInvalid, "invalid dots directory %q", d)
		}
		if seen[d] {
			return errors.Newf(errors.ErrConfigInvalid, "dots directory %q declared twice", d)
		}
		seen[d] = true
	}
	for _, u := range m.Units {
		if u == "" || path.IsAbs(u) {
			return errors.Newf(errors.ErrConfigInvalid, "invalid unit pattern %q", u)
		}
		if _, err := path.Match(u, ""); err != nil {
			return errors.Wrapf(err, errors.ErrConfigInvalid, "invalid unit pattern %q", u)
		}
	}
	return nil
}

// IgnoreMatcher compiles the repo's gitignore-style patterns. It returns nil
// when the repo declares none.
func IgnoreMatcher(r types.RepoConfig) *gitignore.GitIgnore {
	if len(r.IgnorePatterns) == 0 {
		return nil
	}
	return gitignore.CompileIgnoreLines(r.IgnorePatterns...)
}
