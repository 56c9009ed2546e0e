package paths

import (
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/errors"
)

// DefaultProtectedPaths are direct children of home that are never written
// as a whole
var DefaultProtectedPaths = []string{".ssh", ".gnupg", ".config", ".local", ".cache", ".dotsync"}

// Guard rejects targets that resolve to protected roots
type Guard struct {
	home      string
	protected map[string]bool
}

// NewGuard creates a guard for home. Protected entries are names of direct
// children of home; a leading "~/" is accepted.
func NewGuard(home string, protected []string) *Guard {
	g := &Guard{
		home:      filepath.Clean(home),
		protected: make(map[string]bool),
	}
	for _, p := range protected {
		if len(p) > 2 && p[:2] == "~/" {
			p = p[2:]
		}
		if p == "" {
			continue
		}
		g.protected[filepath.Join(g.home, filepath.Clean(p))] = true
	}
	return g
}

// Check returns an ErrUnsafeTarget error when target is home itself, one of
// the protected roots, or outside home entirely
func (g *Guard) Check(target string) error {
	clean := filepath.Clean(target)

	if clean == g.home {
		return errors.New(errors.ErrUnsafeTarget, "target resolves to the home directory itself").
			WithDetail("path", target)
	}
	if !IsUnder(g.home, clean) {
		return errors.New(errors.ErrUnsafeTarget, "target is outside the home directory").
			WithDetail("path", target)
	}
	if g.protected[clean] {
		return errors.Newf(errors.ErrUnsafeTarget, "target resolves to protected path %s", clean).
			WithDetail("path", target)
	}
	return nil
}
