package dotsync

import (
	"fmt"
	"os"

	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/engine"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/hashstore"
	"github.com/arthur-debert/dotsync/pkg/ignore"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/repos"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/ui"
	"github.com/arthur-debert/dotsync/pkg/ui/prompt"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// session is everything one command invocation needs
type session struct {
	engine   *engine.Engine
	store    *hashstore.Store
	renderer ui.Renderer
}

// openSession resolves paths, configuration and repos and opens the hash
// store. Callers must Close the session.
func openSession(cmd *cobra.Command, opts *globalOptions, prompter engine.Prompter) (*session, error) {
	logger := logging.GetLogger("cmd.session")

	format, err := ui.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}

	p, err := paths.New("")
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	loadOpts := config.LoadOptions{ConfigFile: opts.configFile}
	if opts.workers > 0 {
		loadOpts.Overrides = map[string]interface{}{"sync.workers": opts.workers}
	}
	cfg, err := config.Load(p, loadOpts)
	if err != nil {
		return nil, err
	}
	if cfg.Home != "" {
		if p, err = paths.New(cfg.Home); err != nil {
			return nil, fmt.Errorf(MsgErrInitPaths, err)
		}
	}

	fs := filesystem.NewOS()
	resolved, err := repos.Resolve(fs, cfg.Repos)
	if err != nil {
		return nil, err
	}

	store, err := hashstore.Open(cmd.Context(), fs, p.HashStorePath())
	if err != nil {
		return nil, err
	}

	list, err := ignore.Load(fs, p.IgnoreListPath())
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	e, err := engine.New(engine.Options{
		FS:             fs,
		Home:           p.HomeDir(),
		Repos:          resolved.Repos,
		RepoWarnings:   resolved.Skipped,
		Store:          store,
		Ignore:         list,
		Prompter:       prompter,
		Workers:        cfg.Sync.Workers,
		Retention:      cfg.Sync.Retention,
		AutoPrune:      cfg.Sync.AutoPrune,
		ProtectedPaths: cfg.Security.ProtectedPaths,
		DryRun:         opts.dryRun,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout(), p.HomeDir())
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Debug().
		Str("home", p.HomeDir()).
		Int("repos", len(resolved.Repos)).
		Int("skipped", len(resolved.Skipped)).
		Msg("Session ready")

	return &session{engine: e, store: store, renderer: renderer}, nil
}

// Close releases the hash store
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		logger := logging.GetLogger("cmd.session")
		logger.Warn().Err(err).Msg("Failed to close hash store")
	}
}

// finish renders report and turns per-file errors into a failing exit
// status. A fatal error still renders whatever was reported before it.
func (s *session) finish(report *types.Report, err error) error {
	if report != nil {
		if rerr := s.renderer.RenderReport(report); rerr != nil {
			return rerr
		}
	}
	if err != nil {
		return err
	}
	if report != nil && report.HasErrors() {
		return errFilesFailed
	}
	return nil
}

// destinationPrompter picks how add asks for a destination: a fixed repo
// from --repo, an interactive menu on a terminal, or nothing at all
func destinationPrompter(repo string) (engine.Prompter, error) {
	if repo != "" {
		fixed, err := prompt.NewFixed(repo)
		if err != nil {
			return nil, err
		}
		return fixed, nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return prompt.NewInteractive(), nil
	}
	return nil, nil
}
