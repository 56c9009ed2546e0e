// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/ui/present"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
	home   string
}

// New creates a new text renderer
func New(output io.Writer, home string) *Renderer {
	return &Renderer{output: output, home: home}
}

// RenderReport writes one line per entry followed by notes, warnings and
// a summary
func (r *Renderer) RenderReport(report *types.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", present.Title(report))
	for _, e := range report.Entries {
		line := fmt.Sprintf("  %-12s %s", e.Outcome, present.ShortPath(r.home, e.TargetPath))
		if e.Repo != "" {
			line += " (" + e.Repo + ")"
		}
		switch {
		case present.IsDiff(e.Detail):
			b.WriteString(line + "\n")
			for _, l := range strings.Split(strings.TrimRight(e.Detail, "\n"), "\n") {
				b.WriteString("    " + l + "\n")
			}
			continue
		case e.Detail != "":
			line += ": " + e.Detail
		}
		b.WriteString(line + "\n")
	}
	for _, n := range report.Notes {
		fmt.Fprintf(&b, "note: %s\n", n)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	fmt.Fprintf(&b, "%s\n", present.Summary(report))

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
