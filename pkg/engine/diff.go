package engine

import (
	"context"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/pmezard/go-difflib/difflib"
)

// Diff reports the textual delta between each tracked source and its
// target at or below path. An empty path means every dotfile. Nothing is
// written, not even hash records.
func (e *Engine) Diff(ctx context.Context, path string) (*types.Report, error) {
	logger := logging.GetLogger("engine.diff")
	done := logging.LogOperationStart(logger, "diff")
	defer done()

	p, err := e.resolve()
	if err != nil {
		return nil, err
	}
	report := e.newReport("diff", p)

	var files []types.LogicalDotfile
	if path == "" {
		files = p.all()
	} else {
		target, err := e.normalize(path)
		if err != nil {
			report.Add(errorEntry(types.LogicalDotfile{}, path, err))
			return report, nil
		}
		files = p.files(target, true)
		if len(files) == 0 {
			report.Add(errorEntry(types.LogicalDotfile{}, target,
				errors.New(errors.ErrNotTracked, "path is not tracked by any repo").WithDetail("path", target)))
			return report, nil
		}
	}

	requested := make(map[string]bool, len(files))
	for _, df := range files {
		requested[df.TargetPath] = true
	}

	results, err := e.classify(ctx, p, withUnitMembers(p, files), true)
	if err != nil {
		return report, err
	}

	for i, c := range results {
		if !requested[c.df.TargetPath] {
			continue
		}
		if err := checkCancelled(ctx, report, len(results)-i); err != nil {
			return report, err
		}
		report.Add(e.diffOne(c))
	}
	report.SortByTarget()
	return report, nil
}

func (e *Engine) diffOne(c classified) types.ReportEntry {
	entry := c.entry()
	switch c.state {
	case types.OutcomeError, types.OutcomeIgnored:
		return entry
	case types.OutcomeMissing:
		entry.Detail = "target missing"
		return entry
	}
	if c.verdict.InSync {
		entry.Detail = ""
		return entry
	}

	delta, err := e.unifiedDiff(c.df)
	if err != nil {
		return errorEntry(c.df, "", err)
	}
	entry.Detail = delta
	return entry
}

// unifiedDiff renders the change from source to target
func (e *Engine) unifiedDiff(df types.LogicalDotfile) (string, error) {
	src, err := e.fs.ReadFile(df.SourcePath)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot read source").
			WithDetail("path", df.SourcePath)
	}
	tgt, err := e.fs.ReadFile(df.TargetPath)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot read target").
			WithDetail("path", df.TargetPath)
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(src)),
		B:        difflib.SplitLines(string(tgt)),
		FromFile: df.SourcePath,
		ToFile:   df.TargetPath,
		Context:  3,
	})
}
