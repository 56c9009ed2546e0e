// Package units groups overlay files that live under a repo's declared unit
// directories. All members of a unit are treated as modified when any one
// of them is.
package units

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Resolver assigns UnitIDs to dotfiles and answers membership queries
type Resolver struct {
	files    []types.LogicalDotfile
	members  map[types.UnitID][]types.LogicalDotfile
	byTarget map[string]types.UnitID
}

// New assigns every dotfile to the unit its repo declares for it, if any.
// Unit membership is repo-local: only the owning repo's patterns apply.
func New(files []types.LogicalDotfile, repoConfigs []types.RepoConfig) *Resolver {
	logger := logging.GetLogger("units")

	patterns := make(map[string][]string, len(repoConfigs))
	for _, rc := range repoConfigs {
		patterns[rc.Name] = rc.DeclaredUnits
	}

	r := &Resolver{
		files:    make([]types.LogicalDotfile, len(files)),
		members:  make(map[types.UnitID][]types.LogicalDotfile),
		byTarget: make(map[string]types.UnitID),
	}

	for i, df := range files {
		df.Unit = types.NoUnit
		if dir, ok := UnitDir(df.RelPath, patterns[df.Repo]); ok {
			df.Unit = NewID(df.Repo, dir)
			r.members[df.Unit] = append(r.members[df.Unit], df)
			r.byTarget[df.TargetPath] = df.Unit
		}
		r.files[i] = df
	}

	logger.Debug().Int("units", len(r.members)).Int("files", len(files)).Msg("Units resolved")
	return r
}

// NewID formats a UnitID as <repo>:<unit dir>
func NewID(repo, dir string) types.UnitID {
	return types.UnitID(repo + ":" + dir)
}

// UnitDir returns the outermost directory prefix of relPath matching one of
// patterns. Patterns use path.Match syntax against slash-separated
// directories relative to the dots subdirectory.
func UnitDir(relPath string, patterns []string) (string, bool) {
	if len(patterns) == 0 {
		return "", false
	}

	parts := strings.Split(filepath.ToSlash(relPath), "/")
	// The last element is the file itself; only directories form units
	for i := 1; i < len(parts); i++ {
		prefix := path.Join(parts[:i]...)
		for _, p := range patterns {
			if ok, _ := path.Match(strings.TrimSuffix(p, "/"), prefix); ok {
				return prefix, true
			}
		}
	}
	return "", false
}

// Assign returns the input dotfiles with Unit set
func (r *Resolver) Assign() []types.LogicalDotfile {
	out := make([]types.LogicalDotfile, len(r.files))
	copy(out, r.files)
	return out
}

// MembersOf returns every dotfile in a unit, ordered by target path
func (r *Resolver) MembersOf(id types.UnitID) []types.LogicalDotfile {
	members := append([]types.LogicalDotfile(nil), r.members[id]...)
	sort.Slice(members, func(i, j int) bool {
		return members[i].TargetPath < members[j].TargetPath
	})
	return members
}

// UnitOf returns the unit of a target, or NoUnit
func (r *Resolver) UnitOf(target string) types.UnitID {
	return r.byTarget[target]
}

// Units returns every non-empty unit, sorted
func (r *Resolver) Units() []types.UnitID {
	ids := make([]types.UnitID, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
