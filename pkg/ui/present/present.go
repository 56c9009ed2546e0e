// Package present holds the report layout shared by the text and terminal
// renderers.
package present

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// OutcomeOrder is the order outcomes are listed in summaries
var OutcomeOrder = []types.Outcome{
	types.OutcomeCreated,
	types.OutcomeUpdated,
	types.OutcomeUnchanged,
	types.OutcomeMissing,
	types.OutcomeModified,
	types.OutcomeUnitBlocked,
	types.OutcomeIgnored,
	types.OutcomeError,
}

// ShortPath shows p relative to home as ~/rel
func ShortPath(home, p string) string {
	if home == "" || p == "" {
		return p
	}
	rel, ok := paths.RelUnder(home, p)
	if !ok {
		return p
	}
	if rel == "." {
		return "~"
	}
	return "~" + string(filepath.Separator) + rel
}

// Summary counts entries per outcome, e.g. "2 created, 1 modified"
func Summary(r *types.Report) string {
	counts := r.Counts()
	var parts []string
	for _, o := range OutcomeOrder {
		if n := counts[o]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, o))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}

// IsDiff reports whether an entry detail holds a unified diff
func IsDiff(detail string) bool {
	return strings.HasPrefix(detail, "--- ")
}

// Title is the report heading
func Title(r *types.Report) string {
	if r.DryRun {
		return r.Command + " (dry run)"
	}
	return r.Command
}
