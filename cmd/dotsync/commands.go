package dotsync

import (
	"context"
	"fmt"

	"github.com/arthur-debert/dotsync/internal/version"
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/engine"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/spf13/cobra"
)

// operation is one engine call producing a report
type operation func(ctx context.Context, e *engine.Engine) (*types.Report, error)

// runOperation opens a session, runs op and renders its report
func runOperation(cmd *cobra.Command, opts *globalOptions, prompter engine.Prompter, op operation) error {
	s, err := openSession(cmd, opts, prompter)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := op(cmd.Context(), s.engine)
	return s.finish(report, err)
}

func newApplyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "apply",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		Args:    cobra.NoArgs,
		GroupID: "sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, nil, func(ctx context.Context, e *engine.Engine) (*types.Report, error) {
				return e.Apply(ctx)
			})
		},
	}
}

func newAddCmd(opts *globalOptions) *cobra.Command {
	var (
		addOpts engine.AddOptions
		repo    string
	)

	cmd := &cobra.Command{
		Use:     "add <path>",
		Short:   MsgAddShort,
		Long:    MsgAddLong,
		Example: MsgAddExample,
		Args:    cobra.ExactArgs(1),
		GroupID: "sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompter, err := destinationPrompter(repo)
			if err != nil {
				return err
			}
			if addOpts.All {
				addOpts.Recursive = true
			}
			return runOperation(cmd, opts, prompter, func(ctx context.Context, e *engine.Engine) (*types.Report, error) {
				return e.Add(ctx, args[0], addOpts)
			})
		},
	}

	cmd.Flags().BoolVarP(&addOpts.Recursive, "recursive", "r", false, MsgFlagRecursive)
	cmd.Flags().BoolVarP(&addOpts.All, "all", "a", false, MsgFlagAll)
	cmd.Flags().StringVar(&repo, "repo", "", MsgFlagRepo)

	return cmd
}

func newResetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "reset <path>",
		Short:   MsgResetShort,
		Long:    MsgResetLong,
		Args:    cobra.ExactArgs(1),
		GroupID: "sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, nil, func(ctx context.Context, e *engine.Engine) (*types.Report, error) {
				return e.Reset(ctx, args[0])
			})
		},
	}
}

func newDiffCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "diff [path]",
		Short:   MsgDiffShort,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runOperation(cmd, opts, nil, func(ctx context.Context, e *engine.Engine) (*types.Report, error) {
				return e.Diff(ctx, path)
			})
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Args:    cobra.NoArgs,
		GroupID: "sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, nil, func(ctx context.Context, e *engine.Engine) (*types.Report, error) {
				return e.Status(ctx)
			})
		},
	}
}

func newIgnoreCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ignore",
		Short:   MsgIgnoreShort,
		Long:    MsgIgnoreLong,
		GroupID: "sync",
	}

	var recursive bool
	addCmd := &cobra.Command{
		Use:   "add <path>",
		Short: MsgIgnoreAddShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, nil, func(_ context.Context, e *engine.Engine) (*types.Report, error) {
				return e.IgnoreAdd(args[0], recursive)
			})
		},
	}
	addCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, MsgFlagIgnoreRec)

	removeCmd := &cobra.Command{
		Use:     "remove <path>",
		Aliases: []string{"rm"},
		Short:   MsgIgnoreRemoveShort,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, nil, func(_ context.Context, e *engine.Engine) (*types.Report, error) {
				return e.IgnoreRemove(args[0])
			})
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgIgnoreListShort,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, nil, func(_ context.Context, e *engine.Engine) (*types.Report, error) {
				return e.IgnoreList(), nil
			})
		},
	}

	cmd.AddCommand(addCmd, removeCmd, listCmd)
	return cmd
}

func newPruneCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "prune",
		Short:   MsgPruneShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, nil, func(ctx context.Context, e *engine.Engine) (*types.Report, error) {
				return e.Prune(ctx)
			})
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultConfigContent())
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}
