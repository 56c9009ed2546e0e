package engine

import (
	"context"

	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Status classifies every dotfile without touching the home directory or
// the hash store
func (e *Engine) Status(ctx context.Context) (*types.Report, error) {
	logger := logging.GetLogger("engine.status")
	done := logging.LogOperationStart(logger, "status")
	defer done()

	p, err := e.resolve()
	if err != nil {
		return nil, err
	}
	report := e.newReport("status", p)

	results, err := e.classify(ctx, p, p.all(), true)
	if err != nil {
		return report, err
	}
	for _, c := range results {
		report.Add(c.entry())
	}

	logger.Debug().
		Int("files", len(results)).
		Int("modified", report.Count(types.OutcomeModified)).
		Msg("Status computed")
	return report, nil
}
