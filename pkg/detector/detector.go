// Package detector decides whether a target file in the home directory may
// be overwritten without losing user edits.
package detector

import (
	"context"
	"os"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// HashSource is the subset of the hash store the detector consults.
// hashstore.Store records what it computes; hashstore.View does not.
type HashSource interface {
	ContentHashOf(ctx context.Context, path string, kind types.FileKind, mtime time.Time) (string, error)
	AnySourceHashMatches(ctx context.Context, hash, path string) (bool, error)
}

// Verdict is the detector's classification of one dotfile
type Verdict struct {
	// TargetExists is false when there is nothing at the target path
	TargetExists bool

	// Unmodified means the target holds content dotsync placed there
	Unmodified bool

	// InSync means the target already equals the current source
	InSync bool

	SourceHash string
	TargetHash string
}

// Detector classifies targets using a hash source
type Detector struct {
	fs     types.FS
	hashes HashSource
}

// New creates a detector
func New(fs types.FS, hashes HashSource) *Detector {
	return &Detector{fs: fs, hashes: hashes}
}

// Inspect classifies df. The source hash is always computed so callers can
// tell whether an unmodified target is also up to date.
func (d *Detector) Inspect(ctx context.Context, df types.LogicalDotfile) (Verdict, error) {
	logger := logging.GetLogger("detector")
	var v Verdict

	srcInfo, err := d.fs.Stat(df.SourcePath)
	if err != nil {
		return v, errors.Wrap(err, errors.ErrFileAccess, "cannot stat source file").
			WithDetail("path", df.SourcePath)
	}
	v.SourceHash, err = d.hashes.ContentHashOf(ctx, df.SourcePath, types.SourceFile, srcInfo.ModTime())
	if err != nil {
		return v, err
	}

	tgtInfo, err := d.fs.Stat(df.TargetPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to protect
			v.Unmodified = true
			return v, nil
		}
		return v, errors.Wrap(err, errors.ErrFileAccess, "cannot stat target file").
			WithDetail("path", df.TargetPath)
	}
	if tgtInfo.IsDir() {
		return v, errors.New(errors.ErrFileAccess, "target is a directory").
			WithDetail("path", df.TargetPath)
	}
	v.TargetExists = true

	v.TargetHash, err = d.hashes.ContentHashOf(ctx, df.TargetPath, types.TargetFile, tgtInfo.ModTime())
	if err != nil {
		return v, err
	}
	v.InSync = v.TargetHash == v.SourceHash

	// Content we placed there at some point, possibly from an older source
	// or from a repo or subdirectory that has since been overridden
	v.Unmodified = v.InSync
	for _, src := range df.SourcePaths() {
		if v.Unmodified {
			break
		}
		matched, err := d.hashes.AnySourceHashMatches(ctx, v.TargetHash, src)
		if err != nil {
			return v, err
		}
		v.Unmodified = matched
	}

	logger.Trace().
		Str("target", df.TargetPath).
		Bool("unmodified", v.Unmodified).
		Bool("in_sync", v.InSync).
		Msg("Inspected target")
	return v, nil
}

// IsTargetUnmodified reports whether df's target is safe to overwrite
func (d *Detector) IsTargetUnmodified(ctx context.Context, df types.LogicalDotfile) (bool, error) {
	v, err := d.Inspect(ctx, df)
	if err != nil {
		return false, err
	}
	return v.Unmodified, nil
}

// IsUnitUnmodified reports whether every member of a unit is safe to
// overwrite. Members that cannot be inspected count as modified.
func (d *Detector) IsUnitUnmodified(ctx context.Context, members []types.LogicalDotfile) (bool, error) {
	for _, m := range members {
		ok, err := d.IsTargetUnmodified(ctx, m)
		if err != nil {
			if errors.IsFatal(err) {
				return false, err
			}
			return false, nil
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
