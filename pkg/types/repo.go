package types

// DefaultDotsDir is the dots subdirectory assumed when a repo declares none
const DefaultDotsDir = "dots"

// RepoKind identifies how a repo's working copy is laid out on disk
type RepoKind string

const (
	// RepoKindFolder is a plain directory
	RepoKindFolder RepoKind = "folder"

	// RepoKindGit is a version-controlled working copy (has a .git entry)
	RepoKindGit RepoKind = "git"
)

// RepoConfig is the resolved, plain-data description of one dotfile repo.
// It is rebuilt on every invocation and never shared mutably with the engine.
type RepoConfig struct {
	// Name is the repo's display name
	Name string

	// Path is the absolute path to the working copy root
	Path string

	// Kind is the working copy layout
	Kind RepoKind

	// DeclaredDirs are the "dots" subdirectory names, in declared order
	DeclaredDirs []string

	// DeclaredUnits are directory patterns, relative to a dots subdirectory,
	// whose files form a single modification group
	DeclaredUnits []string

	// ActiveSubdirs is the ordered subset of DeclaredDirs contributing to the overlay
	ActiveSubdirs []string

	// Rank is the priority; later repos in configuration have higher rank
	Rank int

	ReadOnly bool
	Enabled  bool

	// IgnorePatterns are gitignore-style patterns matched against paths
	// relative to a dots subdirectory
	IgnorePatterns []string
}

// Clone returns a deep copy of the config
func (r RepoConfig) Clone() RepoConfig {
	c := r
	c.DeclaredDirs = append([]string(nil), r.DeclaredDirs...)
	c.DeclaredUnits = append([]string(nil), r.DeclaredUnits...)
	c.ActiveSubdirs = append([]string(nil), r.ActiveSubdirs...)
	c.IgnorePatterns = append([]string(nil), r.IgnorePatterns...)
	return c
}

// IsDeclared reports whether dir is one of the repo's declared dots directories
func (r RepoConfig) IsDeclared(dir string) bool {
	for _, d := range r.DeclaredDirs {
		if d == dir {
			return true
		}
	}
	return false
}

// SubdirRank returns the activation position of subdir, or -1 if inactive
func (r RepoConfig) SubdirRank(subdir string) int {
	for i, d := range r.ActiveSubdirs {
		if d == subdir {
			return i
		}
	}
	return -1
}
