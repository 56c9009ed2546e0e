package dotsync

import (
	"os"
	"strings"
	"text/template"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// styleHelp reports whether help output should carry terminal styling
func styleHelp() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func bold(s string) string {
	if !styleHelp() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// boldUpper renders section headings in help output
func boldUpper(s string) string {
	return bold(strings.ToUpper(s))
}

// initTemplateFormatting registers the help template functions
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      bold,
		"boldUpper": boldUpper,
	})
}
