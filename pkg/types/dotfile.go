package types

// UnitID identifies a declared unit directory inside one repo.
// The zero value means the file belongs to no unit.
type UnitID string

// NoUnit is the UnitID of files outside every declared unit
const NoUnit UnitID = ""

// LogicalDotfile maps one authoritative source file to its home directory target
type LogicalDotfile struct {
	// SourcePath is the absolute path inside the repo's working copy
	SourcePath string

	// TargetPath is the absolute path inside the home directory
	TargetPath string

	// RelPath is the path relative to both the dots subdirectory and home
	RelPath string

	// Repo is the owning repo's name
	Repo string

	RepoRank   int
	Subdir     string
	SubdirRank int

	Unit UnitID

	// ShadowedSources are the source paths of lower-priority emissions for
	// the same target, highest priority first. Content placed from any of
	// them still counts as ours.
	ShadowedSources []string
}

// SourcePaths returns the authoritative source followed by the shadowed ones
func (d LogicalDotfile) SourcePaths() []string {
	return append([]string{d.SourcePath}, d.ShadowedSources...)
}

// HasUnit reports whether the dotfile belongs to a declared unit
func (d LogicalDotfile) HasUnit() bool {
	return d.Unit != NoUnit
}
