package overlay

import (
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/repos"
	"github.com/arthur-debert/dotsync/pkg/types"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Overlay is the resolved target -> source mapping
type Overlay struct {
	home  string
	files map[string]types.LogicalDotfile

	// Warnings hold REPO_STATE errors for repos whose trees could not be
	// walked; those repos contribute nothing
	Warnings []error
}

// Resolve walks every enabled repo's active subdirectories and builds the
// overlay rooted at home
func Resolve(fs types.FS, repoConfigs []types.RepoConfig, home string) (*Overlay, error) {
	logger := logging.GetLogger("overlay.resolve")

	if home == "" {
		return nil, errors.New(errors.ErrInvalidInput, "home directory is required")
	}

	ordered := make([]types.RepoConfig, 0, len(repoConfigs))
	for _, rc := range repoConfigs {
		if rc.Enabled {
			ordered = append(ordered, rc)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank < ordered[j].Rank
	})

	o := &Overlay{
		home:  filepath.Clean(home),
		files: make(map[string]types.LogicalDotfile),
	}

	for _, rc := range ordered {
		emitted, err := walkRepo(fs, rc, o.home)
		if err != nil {
			logger.Warn().Err(err).Str("repo", rc.Name).Msg("Repo tree unreadable, skipping")
			o.Warnings = append(o.Warnings, err)
			continue
		}
		for _, df := range emitted {
			if prev, ok := o.files[df.TargetPath]; ok {
				logger.Trace().
					Str("target", df.TargetPath).
					Str("from", prev.Repo+"/"+prev.Subdir).
					Str("to", df.Repo+"/"+df.Subdir).
					Msg("Overriding target")
				df.ShadowedSources = prev.SourcePaths()
			}
			o.files[df.TargetPath] = df
		}
	}

	logger.Debug().Int("files", len(o.files)).Int("repos", len(ordered)).Msg("Overlay resolved")
	return o, nil
}

// walkRepo emits one dotfile per regular file in each active subdirectory,
// in activation order
func walkRepo(fs types.FS, rc types.RepoConfig, home string) ([]types.LogicalDotfile, error) {
	logger := logging.GetLogger("overlay.resolve")
	matcher := repos.IgnoreMatcher(rc)

	var out []types.LogicalDotfile
	for rank, subdir := range rc.ActiveSubdirs {
		root := filepath.Join(rc.Path, subdir)

		info, err := fs.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn().Str("repo", rc.Name).Str("subdir", subdir).Msg("Active subdirectory missing on disk")
				continue
			}
			return nil, errors.Wrap(err, errors.ErrRepoState, "cannot access dots directory").
				WithDetail("repo", rc.Name).
				WithDetail("path", root)
		}
		if !info.IsDir() {
			return nil, errors.New(errors.ErrRepoState, "dots directory is not a directory").
				WithDetail("repo", rc.Name).
				WithDetail("path", root)
		}

		w := walker{fs: fs, root: root, matcher: matcher}
		rels, err := w.walk("")
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrRepoState, "cannot walk dots directory").
				WithDetail("repo", rc.Name).
				WithDetail("path", root)
		}

		for _, rel := range rels {
			out = append(out, types.LogicalDotfile{
				SourcePath: filepath.Join(root, filepath.FromSlash(rel)),
				TargetPath: filepath.Join(home, filepath.FromSlash(rel)),
				RelPath:    filepath.FromSlash(rel),
				Repo:       rc.Name,
				RepoRank:   rc.Rank,
				Subdir:     subdir,
				SubdirRank: rank,
			})
		}
	}
	return out, nil
}

type walker struct {
	fs      types.FS
	root    string
	matcher *gitignore.GitIgnore
}

// walk returns slash-separated paths of regular files below rel
func (w walker) walk(rel string) ([]string, error) {
	entries, err := w.fs.ReadDir(filepath.Join(w.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		childRel := path.Join(rel, name)

		if name == ".git" || filesystem.IsTempFile(name) {
			continue
		}
		if w.matcher != nil && w.matcher.MatchesPath(childRel) {
			continue
		}

		switch {
		case entry.IsDir():
			sub, err := w.walk(childRel)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
		case entry.Type().IsRegular():
			files = append(files, childRel)
		}
	}
	return files, nil
}

// Home returns the directory targets are rooted at
func (o *Overlay) Home() string {
	return o.home
}

// Len returns the number of resolved targets
func (o *Overlay) Len() int {
	return len(o.files)
}

// Lookup returns the authoritative dotfile for a target path
func (o *Overlay) Lookup(target string) (types.LogicalDotfile, bool) {
	df, ok := o.files[filepath.Clean(target)]
	return df, ok
}

// Files returns every resolved dotfile ordered by target path
func (o *Overlay) Files() []types.LogicalDotfile {
	out := make([]types.LogicalDotfile, 0, len(o.files))
	for _, df := range o.files {
		out = append(out, df)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TargetPath < out[j].TargetPath
	})
	return out
}

// Under returns dotfiles whose target is dir itself or lies below it.
// Without recursive only direct children of dir are returned.
func (o *Overlay) Under(dir string, recursive bool) []types.LogicalDotfile {
	dir = filepath.Clean(dir)
	var out []types.LogicalDotfile
	for _, df := range o.Files() {
		if df.TargetPath == dir {
			out = append(out, df)
			continue
		}
		if !paths.IsUnder(dir, df.TargetPath) {
			continue
		}
		if !recursive && filepath.Dir(df.TargetPath) != dir {
			continue
		}
		out = append(out, df)
	}
	return out
}
