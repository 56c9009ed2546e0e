// Package ui renders engine reports for people and programs. It supports
// terminal (styled), text (plain) and JSON output.
package ui

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/ui/json"
	"github.com/arthur-debert/dotsync/pkg/ui/terminal"
	"github.com/arthur-debert/dotsync/pkg/ui/text"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderReport renders the result of an engine operation
	RenderReport(report *types.Report) error

	// RenderError renders an error that ended an operation
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format. Paths under home are shown
// relative to it as ~/...
func NewRenderer(format Format, output io.Writer, home string) (Renderer, error) {
	switch format {
	case FormatAuto:
		return NewRenderer(DetectFormat(output), output, home)
	case FormatTerminal:
		return terminal.New(output, home), nil
	case FormatText:
		return text.New(output, home), nil
	case FormatJSON:
		return json.New(output), nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
