package engine

import (
	"context"
	"fmt"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/internal/hashutil"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Apply writes every safe dotfile from the repos into the home directory.
// Targets with user edits, blocked units, ignored paths and failures are
// left untouched and reported.
func (e *Engine) Apply(ctx context.Context) (*types.Report, error) {
	logger := logging.GetLogger("engine.apply")
	done := logging.LogOperationStart(logger, "apply")
	defer done()

	p, err := e.resolve()
	if err != nil {
		return nil, err
	}
	report := e.newReport("apply", p)

	results, err := e.classify(ctx, p, p.all(), e.dryRun)
	if err != nil {
		return report, err
	}

	for i, c := range results {
		if err := checkCancelled(ctx, report, len(results)-i); err != nil {
			return report, err
		}
		entry, err := e.applyOne(ctx, c)
		if err != nil {
			return report, err
		}
		report.Add(entry)
	}

	if e.autoPrune && !e.dryRun {
		n, err := e.store.Prune(ctx, e.retention)
		if err != nil {
			return report, err
		}
		report.Notes = append(report.Notes, fmt.Sprintf("pruned %d expired target hash record(s)", n))
	}

	logger.Info().
		Int("created", report.Count(types.OutcomeCreated)).
		Int("updated", report.Count(types.OutcomeUpdated)).
		Int("modified", report.Count(types.OutcomeModified)).
		Int("errors", report.Count(types.OutcomeError)).
		Msg("Apply finished")
	return report, nil
}

// applyOne acts on a single classified dotfile. Only fatal errors are
// returned.
func (e *Engine) applyOne(ctx context.Context, c classified) (types.ReportEntry, error) {
	entry := c.entry()

	switch c.state {
	case types.OutcomeMissing:
		entry.Outcome = types.OutcomeCreated
		entry.Detail = ""
	case types.OutcomeUnchanged:
		if c.verdict.InSync {
			// Remember the target content as ours
			if !e.dryRun {
				if err := e.store.Record(ctx, c.verdict.TargetHash, c.df.TargetPath, types.TargetFile); err != nil {
					return entry, err
				}
			}
			entry.Detail = ""
			return entry, nil
		}
		entry.Outcome = types.OutcomeUpdated
		entry.Detail = ""
	default:
		return entry, nil
	}

	if e.dryRun {
		entry.Detail = "dry run"
		return entry, nil
	}

	if err := e.writeTarget(ctx, c.df); err != nil {
		if errors.IsFatal(err) {
			return entry, err
		}
		return errorEntry(c.df, "", err), nil
	}
	return entry, nil
}

// writeTarget copies the source over the target atomically and records the
// written content for both paths
func (e *Engine) writeTarget(ctx context.Context, df types.LogicalDotfile) error {
	logger := logging.GetLogger("engine.apply")

	if err := e.guard.Check(df.TargetPath); err != nil {
		return err
	}

	data, err := filesystem.CopyFile(e.fs, df.SourcePath, df.TargetPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write target").
			WithDetail("path", df.TargetPath)
	}
	e.store.Forget(df.TargetPath)

	hash := hashutil.ChecksumBytes(data)
	if err := e.store.Record(ctx, hash, df.SourcePath, types.SourceFile); err != nil {
		return err
	}
	if err := e.store.Record(ctx, hash, df.TargetPath, types.TargetFile); err != nil {
		return err
	}

	logger.Debug().Str("target", df.TargetPath).Str("repo", df.Repo).Msg("Wrote target")
	return nil
}
