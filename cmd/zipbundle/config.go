// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zipbundle/zipbundle/internal/config"
)

// newConfigCommand creates the `zipbundle config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage zipbundle configuration",
		Long: `Manage zipbundle configuration.

Configuration is read from the first of:
  - the file given with --config
  - <user config dir>/zipbundle/config.cue
  - ./zipbundle.cue
and falls back to built-in defaults. ZIPBUNDLE_* environment variables
override single keys, e.g. ZIPBUNDLE_ARCHIVE_STRICT=true.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return app.failSession(cmd, nil, flags, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show which configuration file is in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: flags.configPath})
			if err != nil {
				return app.failSession(cmd, nil, flags, err)
			}
			if path == "" {
				fmt.Fprintln(app.stdout, "(using defaults)")
				return nil
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig(config.LoadOptions{}, force)
			if errors.Is(err, config.ErrConfigExists) {
				fmt.Fprintf(app.stdout, "%s configuration already exists at %s (use --force to overwrite)\n",
					warningIcon, PathStyle.Render(path))
				return nil
			}
			if err != nil {
				return app.failSession(cmd, nil, flags, err)
			}
			fmt.Fprintf(app.stdout, "%s created default configuration at %s\n", successIcon, PathStyle.Render(path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App, flags *rootFlags) error {
	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return app.failSession(cmd, nil, flags, err)
	}
	cfg := s.cfg
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	source := SubtitleStyle.Render("(using defaults)")
	if s.cfgPath != "" {
		source = PathStyle.Render(s.cfgPath)
	}
	fmt.Fprintf(out, "%s: %s\n\n", KeyStyle.Render("Config file"), source)

	fmt.Fprintf(out, "%s:\n", KeyStyle.Render("registry"))
	if len(cfg.Registry) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, e := range cfg.Registry {
		fmt.Fprintf(out, "  - %s prefix=%q recursive=%v\n", PathStyle.Render(e.Root), e.Prefix, e.Recursive)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", KeyStyle.Render("archive"))
	fmt.Fprintf(out, "  strict: %s\n", SuccessStyle.Render(fmt.Sprint(cfg.Archive.Strict)))
	fmt.Fprintf(out, "  level: %s\n", SuccessStyle.Render(fmt.Sprint(cfg.Archive.Level)))
	fmt.Fprintf(out, "  reproducible: %s\n", SuccessStyle.Render(fmt.Sprint(cfg.Archive.Reproducible)))
	if cfg.Archive.Manifest != "" {
		fmt.Fprintf(out, "  manifest: %s\n", PathStyle.Render(cfg.Archive.Manifest))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", KeyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", SuccessStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(out, "  verbose: %s\n", SuccessStyle.Render(fmt.Sprint(cfg.UI.Verbose)))

	return nil
}
