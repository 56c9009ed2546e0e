package engine

import (
	"context"
	"fmt"

	"github.com/arthur-debert/dotsync/pkg/detector"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
	"golang.org/x/sync/errgroup"
)

// classified is the state of one dotfile before an operation acts on it
type classified struct {
	df      types.LogicalDotfile
	state   types.Outcome
	verdict detector.Verdict
	err     error
}

// entry renders the classification as a report entry
func (c classified) entry() types.ReportEntry {
	if c.state == types.OutcomeError {
		return errorEntry(c.df, "", c.err)
	}
	e := types.ReportEntry{
		TargetPath: c.df.TargetPath,
		SourcePath: c.df.SourcePath,
		Repo:       c.df.Repo,
		Outcome:    c.state,
	}
	switch c.state {
	case types.OutcomeUnchanged:
		if !c.verdict.InSync {
			e.Detail = "source changed; apply will update"
		}
	case types.OutcomeMissing:
		e.Detail = "target missing; apply will create"
	case types.OutcomeModified:
		e.Detail = "local changes; add to keep them or reset to discard"
	case types.OutcomeUnitBlocked:
		e.Detail = fmt.Sprintf("unit %s has modified members", c.df.Unit)
	}
	return e
}

// classify runs the detector over files on a bounded worker pool and then
// propagates unit blocking. Only fatal errors are returned; per-file
// failures are recorded as Error states.
func (e *Engine) classify(ctx context.Context, p *plan, files []types.LogicalDotfile, readOnly bool) ([]classified, error) {
	logger := logging.GetLogger("engine.classify")
	det := detector.New(e.fs, e.hashSource(readOnly))

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCancelled, "operation cancelled before classification")
	}

	results := make([]classified, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, df := range files {
		results[i].df = df

		if e.ignored.IsIgnored(df.TargetPath) {
			results[i].state = types.OutcomeIgnored
			continue
		}
		if err := e.guard.Check(df.TargetPath); err != nil {
			results[i].state = types.OutcomeError
			results[i].err = err
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := det.Inspect(gctx, df)
			results[i].verdict = v
			switch {
			case err != nil && errors.IsFatal(err):
				return err
			case err != nil:
				results[i].state = types.OutcomeError
				results[i].err = err
			case !v.TargetExists:
				results[i].state = types.OutcomeMissing
			case v.Unmodified:
				results[i].state = types.OutcomeUnchanged
			default:
				results[i].state = types.OutcomeModified
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.ErrCancelled, "operation cancelled during classification")
		}
		return nil, err
	}

	propagateUnits(results)

	logger.Debug().Int("files", len(files)).Bool("read_only", readOnly).Msg("Classified files")
	return results, nil
}

// propagateUnits marks every still-writable member of a unit as blocked
// when another member is modified or failed. Ignored members take no part.
func propagateUnits(results []classified) {
	blocked := make(map[types.UnitID]bool)
	for _, r := range results {
		if !r.df.HasUnit() {
			continue
		}
		if r.state == types.OutcomeModified || r.state == types.OutcomeError {
			blocked[r.df.Unit] = true
		}
	}

	for i := range results {
		r := &results[i]
		if !r.df.HasUnit() || !blocked[r.df.Unit] {
			continue
		}
		if r.state == types.OutcomeUnchanged || r.state == types.OutcomeMissing {
			r.state = types.OutcomeUnitBlocked
		}
	}
}

// withUnitMembers extends files with the other members of their units so
// unit blocking can be decided on a subset of the overlay
func withUnitMembers(p *plan, files []types.LogicalDotfile) []types.LogicalDotfile {
	seen := make(map[string]bool, len(files))
	for _, df := range files {
		seen[df.TargetPath] = true
	}
	out := append([]types.LogicalDotfile(nil), files...)
	for _, df := range files {
		if !df.HasUnit() {
			continue
		}
		for _, m := range p.units.MembersOf(df.Unit) {
			if !seen[m.TargetPath] {
				seen[m.TargetPath] = true
				out = append(out, p.byTarget[m.TargetPath])
			}
		}
	}
	return out
}
