// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zipbundle/zipbundle/internal/issue"
)

// newRegistryCommand creates the `zipbundle registry` command tree.
func newRegistryCommand(app *App, flags *rootFlags) *cobra.Command {
	regCmd := &cobra.Command{
		Use:   "registry",
		Short: "List registered roots and the files found under them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRoots(cmd, app, flags)
		},
	}

	regCmd.AddCommand(&cobra.Command{
		Use:   "map <root>",
		Short: "Print the bundle map of one registered root",
		Long: `Print the bundle map of one registered root as "source -> archive path"
lines, in the order entries are written to an archive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showBundleMap(cmd, app, flags, args[0])
		},
	})

	return regCmd
}

func listRoots(cmd *cobra.Command, app *App, flags *rootFlags) error {
	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return app.failSession(cmd, nil, flags, err)
	}
	reg, err := s.registry()
	if err != nil {
		return app.failSession(cmd, s, flags, err)
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Registered roots"))
	if reg.Len() == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(none configured)"))
		return nil
	}

	tw := tabwriter.NewWriter(app.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOT\tPREFIX\tRECURSIVE\tFILES")
	for _, root := range reg.Roots() {
		m, _ := reg.Lookup(string(root.Path))
		prefix := root.Prefix
		if prefix == "" {
			prefix = "(top level)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%d\n", root.Path, prefix, root.Recursive, len(m))
	}
	return tw.Flush()
}

func showBundleMap(cmd *cobra.Command, app *App, flags *rootFlags, root string) error {
	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return app.failSession(cmd, nil, flags, err)
	}
	reg, err := s.registry()
	if err != nil {
		return app.failSession(cmd, s, flags, err)
	}

	m, ok := reg.Lookup(root)
	if !ok {
		return app.failSession(cmd, s, flags, issue.NewErrorContext().
			WithOperation("show bundle map").
			WithResource(root).
			WithSuggestion("Run 'zipbundle registry' to list registered roots").
			WithIssue(issue.RootNotRegisteredId).
			Wrap(fmt.Errorf("%q is not a registered root", root)).
			BuildError())
	}

	for _, e := range m {
		fmt.Fprintf(app.stdout, "%s -> %s\n", e.SourcePath, PathStyle.Render(string(e.ArchivePath)))
	}
	return nil
}
