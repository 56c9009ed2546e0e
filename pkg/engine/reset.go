package engine

import (
	"context"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/internal/hashutil"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Reset discards local edits by copying sources over the targets at or
// below path. Unlike Apply it overwrites modified targets.
func (e *Engine) Reset(ctx context.Context, path string) (*types.Report, error) {
	logger := logging.GetLogger("engine.reset")
	done := logging.LogOperationStart(logger, "reset")
	defer done()

	p, err := e.resolve()
	if err != nil {
		return nil, err
	}
	report := e.newReport("reset", p)

	target, err := e.normalize(path)
	if err != nil {
		report.Add(errorEntry(types.LogicalDotfile{}, path, err))
		return report, nil
	}

	files := p.files(target, true)
	if len(files) == 0 {
		report.Add(errorEntry(types.LogicalDotfile{}, target,
			errors.New(errors.ErrNotTracked, "path is not tracked by any repo").WithDetail("path", target)))
		return report, nil
	}

	for i, df := range files {
		if err := checkCancelled(ctx, report, len(files)-i); err != nil {
			return report, err
		}
		entry, err := e.resetOne(ctx, df)
		if err != nil {
			return report, err
		}
		report.Add(entry)
	}

	logger.Info().
		Str("path", target).
		Int("updated", report.Count(types.OutcomeUpdated)).
		Msg("Reset finished")
	return report, nil
}

func (e *Engine) resetOne(ctx context.Context, df types.LogicalDotfile) (types.ReportEntry, error) {
	entry := types.ReportEntry{
		TargetPath: df.TargetPath,
		SourcePath: df.SourcePath,
		Repo:       df.Repo,
	}

	if e.ignored.IsIgnored(df.TargetPath) {
		entry.Outcome = types.OutcomeIgnored
		return entry, nil
	}
	if err := e.guard.Check(df.TargetPath); err != nil {
		return errorEntry(df, "", err), nil
	}

	srcHash, err := hashutil.CalculateFileChecksum(e.fs, df.SourcePath)
	if err != nil {
		return errorEntry(df, "", errors.Wrap(err, errors.ErrFileHash, "cannot hash source").
			WithDetail("path", df.SourcePath)), nil
	}

	info, err := e.fs.Stat(df.TargetPath)
	switch {
	case err == nil && info.IsDir():
		return errorEntry(df, "", errors.New(errors.ErrFileAccess, "target is a directory").
			WithDetail("path", df.TargetPath)), nil
	case err == nil:
		tgtHash, err := hashutil.CalculateFileChecksum(e.fs, df.TargetPath)
		if err != nil {
			return errorEntry(df, "", errors.Wrap(err, errors.ErrFileHash, "cannot hash target").
				WithDetail("path", df.TargetPath)), nil
		}
		if tgtHash == srcHash {
			entry.Outcome = types.OutcomeUnchanged
			if e.dryRun {
				return entry, nil
			}
			return entry, e.recordBoth(ctx, srcHash, df.SourcePath, df.TargetPath)
		}
		entry.Outcome = types.OutcomeUpdated
		entry.Detail = "local changes discarded"
	default:
		entry.Outcome = types.OutcomeCreated
	}

	if e.dryRun {
		entry.Detail = "dry run"
		return entry, nil
	}

	if err := e.writeTarget(ctx, df); err != nil {
		if errors.IsFatal(err) {
			return entry, err
		}
		return errorEntry(df, "", err), nil
	}
	return entry, nil
}
