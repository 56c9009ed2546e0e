// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/ui/present"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Renderer provides styled terminal output
type Renderer struct {
	output io.Writer
	home   string
}

// New creates a new terminal renderer
func New(output io.Writer, home string) *Renderer {
	return &Renderer{output: output, home: home}
}

// RenderReport renders the report with colored outcomes. Diffs are
// highlighted through glamour.
func (r *Renderer) RenderReport(report *types.Report) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render(present.Title(report)) + "\n")
	for _, e := range report.Entries {
		line := outcomeStyle(e.Outcome).Render(string(e.Outcome)) + " " +
			present.ShortPath(r.home, e.TargetPath)
		if e.Repo != "" {
			line += " " + repoStyle.Render(e.Repo)
		}
		switch {
		case present.IsDiff(e.Detail):
			b.WriteString(line + "\n")
			b.WriteString(renderDiff(e.Detail))
			continue
		case e.Detail != "":
			line += " " + mutedStyle.Render(e.Detail)
		}
		b.WriteString(line + "\n")
	}

	for _, n := range report.Notes {
		b.WriteString(noteStyle.Render("• "+n) + "\n")
	}
	for _, w := range report.Warnings {
		b.WriteString(warningStyle.Render("! "+w) + "\n")
	}
	b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render(present.Summary(report)) + "\n")

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	label := lipgloss.NewStyle().Foreground(errorColor).Bold(true).Render("Error:")
	_, werr := fmt.Fprintf(r.output, "%s %v\n", label, err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, noteStyle.Render(msg))
	return err
}

// renderDiff highlights a unified diff, falling back to the plain text
func renderDiff(diff string) string {
	logger := logging.GetLogger("ui.terminal")
	md := "```diff\n" + strings.TrimRight(diff, "\n") + "\n```\n"

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		logger.Debug().Err(err).Msg("Falling back to plain diff")
		return diff
	}
	out, err := renderer.Render(md)
	if err != nil {
		logger.Debug().Err(err).Msg("Falling back to plain diff")
		return diff
	}
	return out
}
