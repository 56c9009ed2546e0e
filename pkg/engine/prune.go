package engine

import (
	"context"
	"fmt"

	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Prune removes target hash records older than the retention window.
// Source records are kept forever.
func (e *Engine) Prune(ctx context.Context) (*types.Report, error) {
	logger := logging.GetLogger("engine.prune")
	report := e.newReport("prune", nil)

	if e.dryRun {
		report.Notes = append(report.Notes, fmt.Sprintf("would prune target hash records older than %s", e.retention))
		return report, nil
	}

	n, err := e.store.Prune(ctx, e.retention)
	if err != nil {
		return report, err
	}
	report.Notes = append(report.Notes, fmt.Sprintf("pruned %d expired target hash record(s)", n))

	logger.Info().Int64("pruned", n).Dur("retention", e.retention).Msg("Pruned hash store")
	return report, nil
}
