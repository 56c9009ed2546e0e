// Package ignore maintains the persisted list of home paths excluded from
// every overlay operation.
package ignore

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// document is the on-disk YAML layout
type document struct {
	Entries []types.IgnoreEntry `yaml:"entries"`
}

// List is the ignore list backed by a YAML file
type List struct {
	fs      types.FS
	path    string
	entries []types.IgnoreEntry
	logger  zerolog.Logger
}

// Load reads the ignore list at path. A missing file is an empty list.
func Load(fs types.FS, path string) (*List, error) {
	l := &List{
		fs:     fs,
		path:   path,
		logger: logging.GetLogger("ignore"),
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read ignore list").
			WithDetail("path", path)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "malformed ignore list").
			WithDetail("path", path)
	}
	for _, e := range doc.Entries {
		e.Path = filepath.Clean(e.Path)
		l.entries = append(l.entries, e)
	}
	l.sort()

	l.logger.Debug().Int("entries", len(l.entries)).Msg("Ignore list loaded")
	return l, nil
}

// Save writes the list atomically
func (l *List) Save() error {
	data, err := yaml.Marshal(document{Entries: l.Entries()})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode ignore list")
	}
	if err := filesystem.AtomicWriteFile(l.fs, l.path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write ignore list").
			WithDetail("path", l.path)
	}
	return nil
}

// IsIgnored reports whether target equals an entry, or lies below a
// recursive one
func (l *List) IsIgnored(target string) bool {
	_, ok := l.coveringEntry(filepath.Clean(target))
	return ok
}

func (l *List) coveringEntry(target string) (types.IgnoreEntry, bool) {
	for _, e := range l.entries {
		if e.Path == target {
			return e, true
		}
		if e.Recursive && paths.IsUnder(e.Path, target) {
			return e, true
		}
	}
	return types.IgnoreEntry{}, false
}

// Add inserts an entry. It fails with IGNORE_CONFLICT when the path is
// already covered. A recursive entry absorbs narrower entries below it;
// those are returned.
func (l *List) Add(path string, recursive bool) ([]types.IgnoreEntry, error) {
	path = filepath.Clean(path)

	if e, ok := l.coveringEntry(path); ok {
		// A recursive add over an exact entry for the same path widens it
		if !(e.Path == path && !e.Recursive && recursive) {
			return nil, errors.Newf(errors.ErrIgnoreConflict, "%s is already ignored by %s", path, describe(e)).
				WithDetail("path", path)
		}
	}

	var kept, removed []types.IgnoreEntry
	for _, e := range l.entries {
		if recursive && paths.IsUnder(path, e.Path) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}

	l.entries = append(kept, types.IgnoreEntry{Path: path, Recursive: recursive})
	l.sort()

	l.logger.Info().
		Str("path", path).
		Bool("recursive", recursive).
		Int("absorbed", len(removed)).
		Msg("Added ignore entry")
	return removed, nil
}

// Remove deletes the entry for path. Removing a path that has no entry of
// its own fails with IGNORE_CONFLICT, even when a broader entry covers it.
func (l *List) Remove(path string) error {
	path = filepath.Clean(path)

	for i, e := range l.entries {
		if e.Path == path {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			l.logger.Info().Str("path", path).Msg("Removed ignore entry")
			return nil
		}
	}

	err := errors.Newf(errors.ErrIgnoreConflict, "%s is not in the ignore list", path).
		WithDetail("path", path)
	if e, ok := l.coveringEntry(path); ok {
		err = err.WithDetail("covered_by", e.Path)
	}
	return err
}

// Entries returns a copy of the entries, sorted by path
func (l *List) Entries() []types.IgnoreEntry {
	return append([]types.IgnoreEntry(nil), l.entries...)
}

func (l *List) sort() {
	sort.Slice(l.entries, func(i, j int) bool {
		return l.entries[i].Path < l.entries[j].Path
	})
}

func describe(e types.IgnoreEntry) string {
	if e.Recursive {
		return e.Path + " (recursive)"
	}
	return e.Path
}
