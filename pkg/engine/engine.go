package engine

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/arthur-debert/dotsync/pkg/detector"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/hashstore"
	"github.com/arthur-debert/dotsync/pkg/ignore"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/overlay"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/units"
)

// DefaultWorkers bounds classification when Options.Workers is unset
const DefaultWorkers = 4

// Destination is a place an untracked file can be added to
type Destination struct {
	Repo   string
	Subdir string
	// Root is the absolute dots subdirectory path
	Root string
}

// String formats the destination as repo/subdir
func (d Destination) String() string {
	return d.Repo + "/" + d.Subdir
}

// Prompter asks the user where an untracked file should live. ok is false
// when the user cancelled.
type Prompter interface {
	ChooseDestination(target string, candidates []Destination) (choice Destination, ok bool, err error)
}

// Options holds the engine's collaborators and settings
type Options struct {
	FS    types.FS
	Home  string
	Repos []types.RepoConfig

	// RepoWarnings are repo-level problems found while resolving the repo
	// list; they are copied into every report
	RepoWarnings []error

	Store    *hashstore.Store
	Ignore   *ignore.List
	Prompter Prompter

	Workers        int
	Retention      time.Duration
	AutoPrune      bool
	ProtectedPaths []string
	DryRun         bool
}

// Engine runs dotsync operations
type Engine struct {
	fs       types.FS
	home     string
	repos    []types.RepoConfig
	warnings []error
	store    *hashstore.Store
	ignored  *ignore.List
	prompter Prompter
	guard    *paths.Guard

	workers   int
	retention time.Duration
	autoPrune bool
	dryRun    bool
}

// New validates options and creates an engine
func New(opts Options) (*Engine, error) {
	if opts.FS == nil || opts.Store == nil || opts.Ignore == nil {
		return nil, errors.New(errors.ErrInternal, "engine requires a filesystem, hash store and ignore list")
	}
	if opts.Home == "" {
		return nil, errors.New(errors.ErrInvalidInput, "engine requires a home directory")
	}

	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	protected := opts.ProtectedPaths
	if protected == nil {
		protected = paths.DefaultProtectedPaths
	}

	repos := make([]types.RepoConfig, len(opts.Repos))
	for i, r := range opts.Repos {
		repos[i] = r.Clone()
	}

	home := filepath.Clean(opts.Home)
	return &Engine{
		fs:        opts.FS,
		home:      home,
		repos:     repos,
		warnings:  opts.RepoWarnings,
		store:     opts.Store,
		ignored:   opts.Ignore,
		prompter:  opts.Prompter,
		guard:     paths.NewGuard(home, protected),
		workers:   workers,
		retention: opts.Retention,
		autoPrune: opts.AutoPrune,
		dryRun:    opts.DryRun,
	}, nil
}

// plan is the resolved candidate set for one operation
type plan struct {
	overlay  *overlay.Overlay
	units    *units.Resolver
	byTarget map[string]types.LogicalDotfile
	warnings []string
}

// resolve recomputes the overlay and unit assignments
func (e *Engine) resolve() (*plan, error) {
	o, err := overlay.Resolve(e.fs, e.repos, e.home)
	if err != nil {
		return nil, err
	}

	u := units.New(o.Files(), e.repos)
	p := &plan{
		overlay:  o,
		units:    u,
		byTarget: make(map[string]types.LogicalDotfile, o.Len()),
	}
	for _, df := range u.Assign() {
		p.byTarget[df.TargetPath] = df
	}

	for _, w := range e.warnings {
		p.warnings = append(p.warnings, w.Error())
	}
	for _, w := range o.Warnings {
		p.warnings = append(p.warnings, w.Error())
	}
	return p, nil
}

// files returns every dotfile at or below target, with units assigned,
// ordered by target path
func (p *plan) files(target string, recursive bool) []types.LogicalDotfile {
	var out []types.LogicalDotfile
	for _, df := range p.overlay.Under(target, recursive) {
		out = append(out, p.byTarget[df.TargetPath])
	}
	return out
}

// all returns every dotfile ordered by target path
func (p *plan) all() []types.LogicalDotfile {
	out := make([]types.LogicalDotfile, 0, len(p.byTarget))
	for _, df := range p.byTarget {
		out = append(out, df)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TargetPath < out[j].TargetPath
	})
	return out
}

func (e *Engine) newReport(command string, p *plan) *types.Report {
	r := types.NewReport(command, e.dryRun)
	if p != nil {
		r.Warnings = append(r.Warnings, p.warnings...)
	}
	return r
}

// repo returns the config of a repo by name
func (e *Engine) repo(name string) (types.RepoConfig, bool) {
	for _, r := range e.repos {
		if r.Name == name {
			return r, true
		}
	}
	return types.RepoConfig{}, false
}

// destinations lists writable repo subdirectories, highest priority first
func (e *Engine) destinations() []Destination {
	repos := make([]types.RepoConfig, 0, len(e.repos))
	for _, r := range e.repos {
		if r.Enabled && !r.ReadOnly {
			repos = append(repos, r)
		}
	}
	sort.SliceStable(repos, func(i, j int) bool {
		return repos[i].Rank > repos[j].Rank
	})

	var out []Destination
	for _, r := range repos {
		for _, sub := range r.ActiveSubdirs {
			out = append(out, Destination{
				Repo:   r.Name,
				Subdir: sub,
				Root:   filepath.Join(r.Path, sub),
			})
		}
	}
	return out
}

// normalize turns a user supplied path into a clean absolute path. An
// empty path means the whole home directory.
func (e *Engine) normalize(path string) (string, error) {
	return paths.ExpandUnder(e.home, path)
}

// errorEntry builds the report entry for a per-file failure
func errorEntry(df types.LogicalDotfile, target string, err error) types.ReportEntry {
	if target == "" {
		target = df.TargetPath
	}
	return types.ReportEntry{
		TargetPath: target,
		SourcePath: df.SourcePath,
		Repo:       df.Repo,
		Outcome:    types.OutcomeError,
		Detail:     err.Error(),
		Code:       string(errors.GetErrorCode(err)),
	}
}

// checkCancelled returns a CANCELLED error once ctx is done. Operations call
// it between files and never in the middle of one.
func checkCancelled(ctx context.Context, r *types.Report, remaining int) error {
	if err := ctx.Err(); err != nil {
		logger := logging.GetLogger("engine")
		logger.Warn().Int("remaining", remaining).Msg("Operation cancelled")
		r.Notes = append(r.Notes, "cancelled before processing every file")
		return errors.Wrapf(err, errors.ErrCancelled, "operation cancelled with %d file(s) not processed", remaining)
	}
	return nil
}

// hashSource picks the recording store or its read-only view
func (e *Engine) hashSource(readOnly bool) detector.HashSource {
	if readOnly {
		return e.store.View()
	}
	return e.store
}
