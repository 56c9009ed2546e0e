package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/internal/hashutil"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// AddOptions controls how a directory is added
type AddOptions struct {
	// Recursive descends into subdirectories
	Recursive bool

	// All also tracks untracked files; it implies Recursive and asks for a
	// destination once for the whole batch
	All bool
}

// Add copies home content back into the repos. Tracked files update their
// source; untracked files are placed in a repo chosen through the Prompter.
func (e *Engine) Add(ctx context.Context, path string, opts AddOptions) (*types.Report, error) {
	logger := logging.GetLogger("engine.add")
	done := logging.LogOperationStart(logger, "add")
	defer done()

	p, err := e.resolve()
	if err != nil {
		return nil, err
	}
	report := e.newReport("add", p)

	target, err := e.normalize(path)
	if err != nil {
		report.Add(errorEntry(types.LogicalDotfile{}, path, err))
		return report, nil
	}

	if e.ignored.IsIgnored(target) {
		report.Add(types.ReportEntry{TargetPath: target, Outcome: types.OutcomeIgnored})
		return report, nil
	}

	info, err := e.fs.Stat(target)
	if err != nil {
		code := errors.ErrFileAccess
		if os.IsNotExist(err) {
			code = errors.ErrFileNotFound
		}
		report.Add(errorEntry(types.LogicalDotfile{}, target,
			errors.Wrap(err, code, "cannot add path").WithDetail("path", target)))
		return report, nil
	}

	if !info.IsDir() {
		if err := e.guard.Check(target); err != nil {
			report.Add(errorEntry(types.LogicalDotfile{}, target, err))
			return report, nil
		}
		var entry types.ReportEntry
		if df, ok := p.byTarget[target]; ok {
			entry, err = e.addTracked(ctx, df)
		} else {
			entry, err = e.addUntracked(ctx, target, nil)
		}
		if err != nil {
			return report, err
		}
		report.Add(entry)
		return report, nil
	}

	// Directories: the whole subtree is the operation's target
	if opts.Recursive || opts.All {
		if err := e.guard.Check(target); err != nil {
			report.Add(errorEntry(types.LogicalDotfile{}, target, err))
			return report, nil
		}
	}
	if err := e.addDirectory(ctx, p, report, target, opts); err != nil {
		return report, err
	}

	logger.Info().
		Str("path", target).
		Int("created", report.Count(types.OutcomeCreated)).
		Int("updated", report.Count(types.OutcomeUpdated)).
		Msg("Add finished")
	return report, nil
}

func (e *Engine) addDirectory(ctx context.Context, p *plan, report *types.Report, dir string, opts AddOptions) error {
	recursive := opts.Recursive || opts.All

	var tracked []types.LogicalDotfile
	for _, df := range p.files(dir, recursive) {
		if e.ignored.IsIgnored(df.TargetPath) {
			continue
		}
		exists, err := filesystem.Exists(e.fs, df.TargetPath)
		if err != nil || !exists {
			continue
		}
		tracked = append(tracked, df)
	}

	onDisk, err := e.listFiles(dir, recursive)
	if err != nil {
		report.Add(errorEntry(types.LogicalDotfile{}, dir,
			errors.Wrap(err, errors.ErrFileAccess, "cannot list directory").WithDetail("path", dir)))
		return nil
	}
	var untracked []string
	for _, f := range onDisk {
		if _, ok := p.byTarget[f]; ok {
			continue
		}
		untracked = append(untracked, f)
	}

	for i, df := range tracked {
		if err := checkCancelled(ctx, report, len(tracked)-i+len(untracked)); err != nil {
			return err
		}
		if err := e.guard.Check(df.TargetPath); err != nil {
			report.Add(errorEntry(df, "", err))
			continue
		}
		entry, err := e.addTracked(ctx, df)
		if err != nil {
			return err
		}
		report.Add(entry)
	}

	if len(untracked) == 0 {
		return nil
	}
	if !opts.All {
		report.Notes = append(report.Notes,
			fmt.Sprintf("%d untracked file(s) skipped; use --all to track them", len(untracked)))
		return nil
	}

	dest, ok, err := e.chooseDestination(dir)
	if err != nil {
		for _, f := range untracked {
			report.Add(errorEntry(types.LogicalDotfile{}, f, err))
		}
		return nil
	}
	if !ok {
		for _, f := range untracked {
			report.Add(types.ReportEntry{TargetPath: f, Outcome: types.OutcomeUnchanged, Detail: "left untracked"})
		}
		return nil
	}

	for i, f := range untracked {
		if err := checkCancelled(ctx, report, len(untracked)-i); err != nil {
			return err
		}
		if err := e.guard.Check(f); err != nil {
			report.Add(errorEntry(types.LogicalDotfile{}, f, err))
			continue
		}
		entry, err := e.addUntracked(ctx, f, &dest)
		if err != nil {
			return err
		}
		report.Add(entry)
	}
	return nil
}

// addTracked copies the target back over its source
func (e *Engine) addTracked(ctx context.Context, df types.LogicalDotfile) (types.ReportEntry, error) {
	logger := logging.GetLogger("engine.add")
	entry := types.ReportEntry{
		TargetPath: df.TargetPath,
		SourcePath: df.SourcePath,
		Repo:       df.Repo,
	}

	if rc, ok := e.repo(df.Repo); ok && rc.ReadOnly {
		return errorEntry(df, "", errors.Newf(errors.ErrRepoReadOnly, "repo %q is read-only", df.Repo).
			WithDetail("path", df.SourcePath)), nil
	}

	data, err := e.fs.ReadFile(df.TargetPath)
	if err != nil {
		return errorEntry(df, "", errors.Wrap(err, errors.ErrFileAccess, "cannot read target").
			WithDetail("path", df.TargetPath)), nil
	}
	hash := hashutil.ChecksumBytes(data)

	srcHash, err := hashutil.CalculateFileChecksum(e.fs, df.SourcePath)
	if err != nil {
		return errorEntry(df, "", errors.Wrap(err, errors.ErrFileHash, "cannot hash source").
			WithDetail("path", df.SourcePath)), nil
	}

	if srcHash == hash {
		entry.Outcome = types.OutcomeUnchanged
		if e.dryRun {
			return entry, nil
		}
		return entry, e.recordBoth(ctx, hash, df.SourcePath, df.TargetPath)
	}

	entry.Outcome = types.OutcomeUpdated
	entry.Detail = "source updated from home"
	if e.dryRun {
		entry.Detail = "dry run"
		return entry, nil
	}

	if _, err := filesystem.CopyFile(e.fs, df.TargetPath, df.SourcePath); err != nil {
		return errorEntry(df, "", errors.Wrap(err, errors.ErrFileWrite, "failed to write source").
			WithDetail("path", df.SourcePath)), nil
	}
	e.store.Forget(df.SourcePath)

	logger.Debug().Str("source", df.SourcePath).Msg("Updated source from target")
	return entry, e.recordBoth(ctx, hash, df.SourcePath, df.TargetPath)
}

// addUntracked creates a new source for target in dest, prompting when dest
// is nil
func (e *Engine) addUntracked(ctx context.Context, target string, dest *Destination) (types.ReportEntry, error) {
	logger := logging.GetLogger("engine.add")
	entry := types.ReportEntry{TargetPath: target}

	rel, ok := paths.RelUnder(e.home, target)
	if !ok {
		return errorEntry(types.LogicalDotfile{}, target, errors.New(errors.ErrUnsafeTarget, "path is outside the home directory").
			WithDetail("path", target)), nil
	}

	if dest == nil {
		d, ok, err := e.chooseDestination(target)
		if err != nil {
			return errorEntry(types.LogicalDotfile{}, target, err), nil
		}
		if !ok {
			entry.Outcome = types.OutcomeUnchanged
			entry.Detail = "left untracked"
			return entry, nil
		}
		dest = &d
	}

	source := filepath.Join(dest.Root, rel)
	entry.SourcePath = source
	entry.Repo = dest.Repo

	exists, err := filesystem.Exists(e.fs, source)
	if err != nil || exists {
		return errorEntry(types.LogicalDotfile{SourcePath: source, Repo: dest.Repo}, target,
			errors.Newf(errors.ErrAlreadyExists, "%s already exists in %s", rel, dest).
				WithDetail("path", source)), nil
	}

	entry.Outcome = types.OutcomeCreated
	entry.Detail = "tracked in " + dest.String()
	if e.dryRun {
		entry.Detail = "dry run; would track in " + dest.String()
		return entry, nil
	}

	data, err := filesystem.CopyFile(e.fs, target, source)
	if err != nil {
		return errorEntry(types.LogicalDotfile{SourcePath: source, Repo: dest.Repo}, target,
			errors.Wrap(err, errors.ErrFileWrite, "failed to create source").WithDetail("path", source)), nil
	}

	logger.Info().Str("target", target).Str("source", source).Msg("Tracked new file")
	return entry, e.recordBoth(ctx, hashutil.ChecksumBytes(data), source, target)
}

// chooseDestination asks the prompter where untracked content should go
func (e *Engine) chooseDestination(target string) (Destination, bool, error) {
	candidates := e.destinations()
	if len(candidates) == 0 {
		return Destination{}, false, errors.New(errors.ErrRepoReadOnly, "no writable repo to add files to").
			WithDetail("path", target)
	}
	if e.prompter == nil {
		return Destination{}, false, errors.New(errors.ErrInvalidInput, "file is untracked and no destination was given").
			WithDetail("path", target)
	}

	choice, ok, err := e.prompter.ChooseDestination(target, candidates)
	if err != nil {
		if errors.GetErrorCode(err) != errors.ErrUnknown {
			return Destination{}, false, err
		}
		return Destination{}, false, errors.Wrap(err, errors.ErrInternal, "destination prompt failed").
			WithDetail("path", target)
	}
	if !ok {
		return Destination{}, false, nil
	}
	for _, c := range candidates {
		if c.Repo == choice.Repo && c.Subdir == choice.Subdir {
			return c, true, nil
		}
	}
	return Destination{}, false, errors.Newf(errors.ErrInvalidInput, "%s is not a writable destination", choice).
		WithDetail("path", target)
}

// recordBoth records content as both the source and the target hash
func (e *Engine) recordBoth(ctx context.Context, hash, source, target string) error {
	if err := e.store.Record(ctx, hash, source, types.SourceFile); err != nil {
		return err
	}
	return e.store.Record(ctx, hash, target, types.TargetFile)
}

// listFiles returns regular files below dir, skipping dotsync temp files
func (e *Engine) listFiles(dir string, recursive bool) ([]string, error) {
	entries, err := e.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)
		if filesystem.IsTempFile(name) || e.ignored.IsIgnored(full) {
			continue
		}
		switch {
		case entry.IsDir():
			if !recursive || name == ".git" {
				continue
			}
			sub, err := e.listFiles(full, true)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		case entry.Type().IsRegular():
			out = append(out, full)
		}
	}
	return out, nil
}
