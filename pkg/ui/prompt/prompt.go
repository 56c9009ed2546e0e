// Package prompt implements the engine's destination prompt, interactively
// with pterm or from a --repo flag.
package prompt

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/engine"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/pterm/pterm"
)

// LeaveUntracked is the menu entry that cancels the prompt
const LeaveUntracked = "leave untracked"

// SelectFunc shows options and returns the chosen one
type SelectFunc func(title string, options []string) (string, error)

// Interactive asks on the terminal which repo should receive a file
type Interactive struct {
	selectFn SelectFunc
}

// NewInteractive creates a prompter backed by pterm's interactive select
func NewInteractive() *Interactive {
	return &Interactive{selectFn: ptermSelect}
}

// NewInteractiveWith creates a prompter with a custom selector
func NewInteractiveWith(fn SelectFunc) *Interactive {
	return &Interactive{selectFn: fn}
}

// ChooseDestination implements engine.Prompter
func (p *Interactive) ChooseDestination(target string, candidates []engine.Destination) (engine.Destination, bool, error) {
	options := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		options = append(options, c.String())
	}
	options = append(options, LeaveUntracked)

	choice, err := p.selectFn(fmt.Sprintf("Add %s to", target), options)
	if err != nil {
		return engine.Destination{}, false, err
	}
	for _, c := range candidates {
		if c.String() == choice {
			return c, true, nil
		}
	}
	return engine.Destination{}, false, nil
}

func ptermSelect(title string, options []string) (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithDefaultText(title).
		WithOptions(options).
		Show()
}

// Fixed answers every prompt with a destination given up front, as
// "repo" or "repo/subdir"
type Fixed struct {
	repo   string
	subdir string
}

// NewFixed parses a --repo value
func NewFixed(dest string) (*Fixed, error) {
	repo, subdir, _ := strings.Cut(dest, "/")
	if repo == "" || strings.Contains(subdir, "/") {
		return nil, errors.Newf(errors.ErrInvalidInput, "invalid destination %q, expected repo or repo/subdir", dest)
	}
	return &Fixed{repo: repo, subdir: subdir}, nil
}

// ChooseDestination implements engine.Prompter. A repo without a subdir
// picks its first active subdirectory.
func (f *Fixed) ChooseDestination(target string, candidates []engine.Destination) (engine.Destination, bool, error) {
	for _, c := range candidates {
		if c.Repo == f.repo && (f.subdir == "" || c.Subdir == f.subdir) {
			return c, true, nil
		}
	}
	dest := f.repo
	if f.subdir != "" {
		dest += "/" + f.subdir
	}
	return engine.Destination{}, false, errors.Newf(errors.ErrInvalidInput, "%s is not a writable destination", dest).
		WithDetail("path", target)
}
