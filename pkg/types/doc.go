// Package types defines the core data model shared across dotsync: repo
// configuration, logical dotfiles, hash records, ignore entries and the
// per-file report returned by every engine operation. It also holds the
// filesystem interface all packages operate through.
package types
