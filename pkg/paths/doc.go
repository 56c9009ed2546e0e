// Package paths provides centralized path handling for dotsync.
// It implements XDG Base Directory specification compliance, resolves the
// home directory the overlay is rooted at, and owns the safety guard that
// keeps writes away from protected locations.
package paths
