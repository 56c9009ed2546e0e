package repos

import (
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Result is the outcome of resolving the configured repos
type Result struct {
	// Repos are usable repos in priority order (lowest rank first).
	// Disabled repos are included with Enabled unset.
	Repos []types.RepoConfig

	// Skipped holds one REPO_STATE error per repo whose working copy could
	// not be used. The remaining repos still resolve.
	Skipped []error
}

// Resolve builds RepoConfigs from the configured entries. Working copy
// problems skip only the affected repo; malformed declarations are fatal.
func Resolve(fs types.FS, entries []config.RepoEntry) (*Result, error) {
	logger := logging.GetLogger("repos.resolve")
	result := &Result{}
	names := make(map[string]bool)
	claim := func(name, path string) error {
		if names[name] {
			return errors.Newf(errors.ErrConfigInvalid, "repo name %q is used twice", name).
				WithDetail("path", path)
		}
		names[name] = true
		return nil
	}

	for rank, entry := range entries {
		name := entry.DefaultName()

		if !entry.IsEnabled() {
			if err := claim(name, entry.Path); err != nil {
				return nil, err
			}
			logger.Debug().Str("repo", name).Msg("Repo disabled")
			result.Repos = append(result.Repos, types.RepoConfig{
				Name:    name,
				Path:    entry.Path,
				Kind:    entry.RepoKind(),
				Rank:    rank,
				Enabled: false,
			})
			continue
		}

		src, err := NewSource(entry.RepoKind(), entry.Path)
		if err != nil {
			return nil, err
		}
		if err := src.Check(fs); err != nil {
			if err := claim(name, entry.Path); err != nil {
				return nil, err
			}
			logger.Warn().Err(err).Str("repo", name).Msg("Skipping repo")
			result.Skipped = append(result.Skipped,
				errors.Wrapf(err, errors.ErrRepoState, "repo %q skipped", name).WithDetail("repo", name))
			continue
		}

		meta, err := LoadMetadata(fs, src.Root())
		if err != nil {
			return nil, err
		}
		if entry.Name == "" && meta.Name != "" {
			name = meta.Name
		}
		if err := claim(name, entry.Path); err != nil {
			return nil, err
		}

		rc := types.RepoConfig{
			Name:           name,
			Path:           src.Root(),
			Kind:           src.Kind(),
			DeclaredDirs:   meta.DotsDirs,
			DeclaredUnits:  meta.Units,
			ActiveSubdirs:  entry.Active,
			Rank:           rank,
			ReadOnly:       entry.ReadOnly,
			Enabled:        true,
			IgnorePatterns: meta.Ignore,
		}
		if len(rc.ActiveSubdirs) == 0 {
			rc.ActiveSubdirs = []string{rc.DeclaredDirs[0]}
		}
		for _, a := range rc.ActiveSubdirs {
			if !rc.IsDeclared(a) {
				return nil, errors.Newf(errors.ErrConfigInvalid,
					"repo %q activates %q which is not one of its dots directories %v", name, a, rc.DeclaredDirs).
					WithDetail("repo", name)
			}
		}

		logger.Debug().
			Str("repo", name).
			Int("rank", rank).
			Strs("active", rc.ActiveSubdirs).
			Msg("Resolved repo")
		result.Repos = append(result.Repos, rc)
	}

	return result, nil
}

// Enabled returns the enabled repos, preserving priority order
func (r *Result) Enabled() []types.RepoConfig {
	var out []types.RepoConfig
	for _, rc := range r.Repos {
		if rc.Enabled {
			out = append(out, rc)
		}
	}
	return out
}
