// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the zipbundle command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the full command tree around app. The root command
// itself builds archives; everything else is a subcommand.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}
	build := &buildFlags{}

	rootCmd := &cobra.Command{
		Use:   "zipbundle [flags] <target_archive_path> <source> [<source>...]",
		Short: "Bundle registered source trees into one ZIP archive",
		Long: TitleStyle.Render("zipbundle") + SubtitleStyle.Render(" - bundle source trees into one ZIP archive") + `

Each source is either a directory or a file. A directory is packed only when
it is a registered root: its files are stored under the root's archive prefix.
Any other directory is skipped, or rejected with --strict. A file is stored
at the top of the archive under its base name.

` + SubtitleStyle.Render("Examples:") + `
  zipbundle out.zip lib/lua lua_modules/async     Bundle two registered roots
  zipbundle out.zip lib/lua main.lua              Add a plain file at the top level
  zipbundle --strict out.zip lib/lua              Fail on unregistered directories
  zipbundle registry                              List registered roots`,
		Args:    cobra.MinimumNArgs(2),
		Version: getVersionString(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app, flags, build, args[0], args[1:])
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is <user config dir>/zipbundle/config.cue)")
	build.register(rootCmd)

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newRegistryCommand(app, flags))
	rootCmd.AddCommand(newInspectCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString prefers ldflags, then module build info.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the CLI and exits the process with the command's exit code.
// This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if isValid, _ := exitErr.Code.IsValid(); isValid {
				os.Exit(int(exitErr.Code))
			}
		}
		os.Exit(1)
	}
}

// handleError prints errors that were not already reported by a command,
// such as flag parsing failures.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
