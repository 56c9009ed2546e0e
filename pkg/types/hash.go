package types

import "time"

// FileKind tags a hash record as belonging to a source or a target file.
// It is stored as the boolean source_file column.
type FileKind int

const (
	// TargetFile is a file inside the home directory
	TargetFile FileKind = iota

	// SourceFile is a file inside a repo's working copy
	SourceFile
)

// FileKindFromBool converts the persisted source_file flag
func FileKindFromBool(sourceFile bool) FileKind {
	if sourceFile {
		return SourceFile
	}
	return TargetFile
}

// IsSource returns the persisted source_file flag
func (k FileKind) IsSource() bool {
	return k == SourceFile
}

func (k FileKind) String() string {
	if k == SourceFile {
		return "source"
	}
	return "target"
}

// HashRecord links a content hash to a path
type HashRecord struct {
	Hash    string
	Path    string
	Kind    FileKind
	Created time.Time
}

// IgnoreEntry excludes a path, and with Recursive everything below it, from
// all overlay operations
type IgnoreEntry struct {
	Path      string `yaml:"path" json:"path"`
	Recursive bool   `yaml:"recursive" json:"recursive"`
}
