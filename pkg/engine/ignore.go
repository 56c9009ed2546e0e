package engine

import (
	"fmt"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// IgnoreAdd puts path on the ignore list. Conflicts are reported as Error
// entries.
func (e *Engine) IgnoreAdd(path string, recursive bool) (*types.Report, error) {
	logger := logging.GetLogger("engine.ignore")
	report := e.newReport("ignore add", nil)

	target, err := e.normalize(path)
	if err != nil {
		report.Add(errorEntry(types.LogicalDotfile{}, path, err))
		return report, nil
	}

	absorbed, err := e.ignored.Add(target, recursive)
	if err != nil {
		if !errors.IsErrorCode(err, errors.ErrIgnoreConflict) {
			return report, err
		}
		report.Add(errorEntry(types.LogicalDotfile{}, target, err))
		return report, nil
	}

	detail := "exact"
	if recursive {
		detail = "recursive"
	}
	report.Add(types.ReportEntry{TargetPath: target, Outcome: types.OutcomeIgnored, Detail: detail})
	for _, a := range absorbed {
		report.Notes = append(report.Notes, fmt.Sprintf("%s replaced by the new entry", a.Path))
	}

	if err := e.saveIgnoreList(); err != nil {
		return report, err
	}
	logger.Debug().Str("path", target).Bool("recursive", recursive).Msg("Ignore entry added")
	return report, nil
}

// IgnoreRemove takes path off the ignore list
func (e *Engine) IgnoreRemove(path string) (*types.Report, error) {
	report := e.newReport("ignore remove", nil)

	target, err := e.normalize(path)
	if err != nil {
		report.Add(errorEntry(types.LogicalDotfile{}, path, err))
		return report, nil
	}

	if err := e.ignored.Remove(target); err != nil {
		if !errors.IsErrorCode(err, errors.ErrIgnoreConflict) {
			return report, err
		}
		report.Add(errorEntry(types.LogicalDotfile{}, target, err))
		return report, nil
	}
	report.Add(types.ReportEntry{TargetPath: target, Outcome: types.OutcomeUpdated, Detail: "removed from ignore list"})

	return report, e.saveIgnoreList()
}

// IgnoreList reports every ignore entry
func (e *Engine) IgnoreList() *types.Report {
	report := e.newReport("ignore list", nil)
	for _, entry := range e.ignored.Entries() {
		detail := "exact"
		if entry.Recursive {
			detail = "recursive"
		}
		report.Add(types.ReportEntry{TargetPath: entry.Path, Outcome: types.OutcomeIgnored, Detail: detail})
	}
	return report
}

func (e *Engine) saveIgnoreList() error {
	if e.dryRun {
		return nil
	}
	return e.ignored.Save()
}
