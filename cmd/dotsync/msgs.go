package dotsync

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort         = "Keep dotfiles in your home directory in sync with your repos"
	MsgApplyShort        = "Copy dotfiles from the repos into the home directory"
	MsgAddShort          = "Copy home files back into a repo"
	MsgResetShort        = "Discard local changes to tracked files"
	MsgDiffShort         = "Show differences between repo and home files"
	MsgStatusShort       = "Show the state of every tracked file"
	MsgIgnoreShort       = "Manage the ignore list"
	MsgIgnoreAddShort    = "Add a path to the ignore list"
	MsgIgnoreRemoveShort = "Remove a path from the ignore list"
	MsgIgnoreListShort   = "List ignored paths"
	MsgPruneShort        = "Remove expired hash records"
	MsgConfigShort       = "Print the default configuration"
	MsgVersionShort      = "Print version information"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun    = "Preview changes without executing them"
	MsgFlagFormat    = "Output format: auto, term, text or json"
	MsgFlagConfig    = "Configuration file (default is $XDG_CONFIG_HOME/dotsync/config.toml)"
	MsgFlagWorkers   = "Number of files hashed in parallel"
	MsgFlagRecursive = "Descend into subdirectories"
	MsgFlagAll       = "Also track untracked files (implies --recursive)"
	MsgFlagRepo      = "Destination for untracked files, as repo or repo/subdir"
	MsgFlagIgnoreRec = "Ignore everything below the path as well"

	// Version output
	MsgVersionFormat = "dotsync version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrInitPaths   = "failed to initialize paths: %w"
	MsgErrFilesFailed = "some files could not be processed"
	MsgErrNoCommand   = "no command specified"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/apply-long.txt
	msgApplyLongRaw string
	MsgApplyLong    = strings.TrimSpace(msgApplyLongRaw)

	//go:embed msgs/add-long.txt
	msgAddLongRaw string
	MsgAddLong    = strings.TrimSpace(msgAddLongRaw)

	//go:embed msgs/add-example.txt
	msgAddExampleRaw string
	MsgAddExample    = strings.TrimRight(msgAddExampleRaw, "\n")

	//go:embed msgs/reset-long.txt
	msgResetLongRaw string
	MsgResetLong    = strings.TrimSpace(msgResetLongRaw)

	//go:embed msgs/ignore-long.txt
	msgIgnoreLongRaw string
	MsgIgnoreLong    = strings.TrimSpace(msgIgnoreLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
