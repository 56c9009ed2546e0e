package testenv

import (
	"sync"

	"github.com/arthur-debert/dotsync/pkg/engine"
)

// FakePrompter answers destination prompts from a script. With no answer
// configured it picks the first candidate.
type FakePrompter struct {
	mu sync.Mutex

	// Repo and Subdir select the answer; an empty Subdir matches any
	Repo   string
	Subdir string

	// Cancel makes every prompt return ok=false
	Cancel bool

	// Err is returned from every prompt when set
	Err error

	// Calls records the targets the prompter was asked about
	Calls []string
}

// ChooseDestination implements engine.Prompter
func (f *FakePrompter) ChooseDestination(target string, candidates []engine.Destination) (engine.Destination, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, target)
	if f.Err != nil {
		return engine.Destination{}, false, f.Err
	}
	if f.Cancel || len(candidates) == 0 {
		return engine.Destination{}, false, nil
	}
	if f.Repo == "" {
		return candidates[0], true, nil
	}
	for _, c := range candidates {
		if c.Repo == f.Repo && (f.Subdir == "" || c.Subdir == f.Subdir) {
			return c, true, nil
		}
	}
	return engine.Destination{Repo: f.Repo, Subdir: f.Subdir}, true, nil
}
