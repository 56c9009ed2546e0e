// Package dotsync implements the dotsync command line interface.
package dotsync

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/arthur-debert/dotsync/internal/version"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errFilesFailed signals that the report, already printed, holds errors
var errFilesFailed = stderrors.New(MsgErrFilesFailed)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	dryRun     bool
	format     string
	configFile string
	workers    int
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "dotsync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return stderrors.New(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().IntVar(&opts.workers, "workers", 0, MsgFlagWorkers)

	rootCmd.AddGroup(&cobra.Group{ID: "sync", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)
	rootCmd.SetHelpCommandGroupID("misc")
	rootCmd.SetCompletionCommandGroupID("misc")

	rootCmd.AddCommand(newApplyCmd(opts))
	rootCmd.AddCommand(newAddCmd(opts))
	rootCmd.AddCommand(newResetCmd(opts))
	rootCmd.AddCommand(newDiffCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newIgnoreCmd(opts))
	rootCmd.AddCommand(newPruneCmd(opts))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Main runs the CLI and returns the process exit code. Interrupts cancel
// the running operation between files.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !stderrors.Is(err, errFilesFailed) {
		renderer, rerr := ui.NewRenderer(ui.DetectFormat(rootCmd.ErrOrStderr()), rootCmd.ErrOrStderr(), "")
		if rerr == nil {
			_ = renderer.RenderError(err)
		} else {
			fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}
	return 1
}
