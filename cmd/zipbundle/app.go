// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zipbundle/zipbundle/internal/config"
	"github.com/zipbundle/zipbundle/internal/issue"
	"github.com/zipbundle/zipbundle/pkg/registry"
	"github.com/zipbundle/zipbundle/pkg/types"
)

type (
	// App is the composition root of the CLI. Every command handler receives
	// it and reaches configuration and output streams through it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// rootFlags holds the persistent flags shared by every command.
	rootFlags struct {
		configPath string
		verbose    bool
	}

	// session is the per-invocation state derived from flags and configuration.
	session struct {
		cfg     *config.Config
		cfgPath string
		verbose bool
		logger  *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// newSession loads configuration and sets up logging for one command run.
// The --verbose flag wins over ui.verbose.
func (a *App) newSession(ctx context.Context, flags *rootFlags) (*session, error) {
	cfg, cfgPath, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	verbose := flags.verbose || cfg.UI.Verbose
	return &session{
		cfg:     cfg,
		cfgPath: cfgPath,
		verbose: verbose,
		logger:  newLogger(a.stderr, verbose),
	}, nil
}

// registry scans every configured root.
func (s *session) registry() (registry.Registry, error) {
	reg, err := registry.New(s.cfg.Roots(), registry.WithLogger(s.logger))
	if err != nil {
		return registry.Registry{}, issue.NewErrorContext().
			WithOperation("scan registry roots").
			WithSuggestion("Run 'zipbundle registry' to list the configured roots").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	return reg, nil
}

// renderIssue is replaced in tests to avoid terminal detection.
var renderIssue = (*issue.Issue).Render

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: config.AppName})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// fail reports err on stderr and converts it into an ExitError so that the
// error is not printed a second time on the way out. Verbose runs also get
// the issue catalog guidance attached to the error.
func (a *App) fail(cmd *cobra.Command, err error, verbose bool, scheme config.ColorScheme) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	fmt.Fprintf(a.stderr, "%s %s\n", errorIcon, formatErrorForDisplay(err, verbose))

	if verbose {
		var ae *issue.ActionableError
		if errors.As(err, &ae) && ae.Issue != 0 {
			if guide := issue.Get(ae.Issue); guide != nil {
				if rendered, rerr := renderIssue(guide, string(scheme)); rerr == nil {
					fmt.Fprint(a.stderr, rendered)
				}
			}
		}
	}

	return &ExitError{Code: types.ExitFailure, Err: err}
}

// failSession reports err using the session's settings when one exists.
func (a *App) failSession(cmd *cobra.Command, s *session, flags *rootFlags, err error) error {
	if s == nil {
		return a.fail(cmd, err, flags.verbose, config.ColorSchemeAuto)
	}
	return a.fail(cmd, err, s.verbose, s.cfg.UI.ColorScheme)
}

// formatErrorForDisplay uses ActionableError.Format when available so that
// suggestions are shown, and the full chain in verbose mode.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
