package config

import (
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Validate checks a decoded configuration. Any failure is a ConfigError:
// the overlay cannot be trusted, so nothing should touch the filesystem.
func Validate(cfg *Config) error {
	if cfg.Sync.Workers < 1 {
		return errors.Newf(errors.ErrConfigInvalid, "sync.workers must be at least 1, got %d", cfg.Sync.Workers)
	}
	if cfg.Sync.Retention <= 0 {
		return errors.Newf(errors.ErrConfigInvalid, "sync.retention must be positive, got %s", cfg.Sync.Retention)
	}

	for _, p := range cfg.Security.ProtectedPaths {
		if err := paths.ValidatePath(p); err != nil {
			return errors.Wrap(err, errors.ErrConfigInvalid, "invalid protected path")
		}
	}

	seen := make(map[string]int)
	for i, r := range cfg.Repos {
		if r.Path == "" {
			return errors.Newf(errors.ErrConfigInvalid, "repo #%d has no path", i+1)
		}
		if r.Name != "" {
			if err := paths.ValidateDirName(r.Name); err != nil {
				return errors.Wrapf(err, errors.ErrConfigInvalid, "repo #%d has an invalid name", i+1).
					WithDetail("repo", r.Name)
			}
		}
		name := r.DefaultName()
		if prev, ok := seen[name]; ok {
			return errors.Newf(errors.ErrConfigInvalid, "repo name %q used by entries #%d and #%d", name, prev+1, i+1).
				WithDetail("repo", name)
		}
		seen[name] = i

		switch r.RepoKind() {
		case types.RepoKindFolder, types.RepoKindGit:
		default:
			return errors.Newf(errors.ErrConfigInvalid, "repo %q has unknown kind %q", name, r.Kind).
				WithDetail("repo", name)
		}

		for _, a := range r.Active {
			if err := paths.ValidateDirName(a); err != nil {
				return errors.Wrapf(err, errors.ErrConfigInvalid, "repo %q has an invalid active subdirectory", name).
					WithDetail("repo", name)
			}
		}
	}
	return nil
}
