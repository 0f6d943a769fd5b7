// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zipbundle/zipbundle/internal/issue"
	"github.com/zipbundle/zipbundle/pkg/archive"
)

const shortDigestLen = 16

func newInspectCommand(app *App, flags *rootFlags) *cobra.Command {
	var verifyPath string

	inspectCmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List the entries of an archive",
		Long: `List the entries of an archive with their compression method, sizes
and BLAKE3 digest. With --verify, the archive is checked against a manifest
written by 'zipbundle --manifest'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, app, flags, args[0], verifyPath)
		},
	}
	inspectCmd.Flags().StringVar(&verifyPath, "verify", "", "verify the archive against this TOML manifest")

	return inspectCmd
}

func runInspect(cmd *cobra.Command, app *App, flags *rootFlags, path, verifyPath string) error {
	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return app.failSession(cmd, nil, flags, err)
	}

	entries, err := archive.Inspect(path)
	if err != nil {
		return app.failSession(cmd, s, flags, issue.NewErrorContext().
			WithOperation("inspect archive").
			WithResource(path).
			WithIssue(issue.ArchiveUnreadableId).
			Wrap(err).
			BuildError())
	}

	tw := tabwriter.NewWriter(app.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tSIZE\tCOMPRESSED\tBLAKE3\tNAME")
	for _, e := range entries {
		digest := e.Digest
		if !s.verbose && len(digest) > shortDigestLen {
			digest = digest[:shortDigestLen]
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", archive.MethodName(e.Method), e.Size, e.CompressedSize, digest, e.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%d entries\n", len(entries))

	if verifyPath == "" {
		return nil
	}

	m, err := archive.ReadManifest(verifyPath)
	if err != nil {
		return app.failSession(cmd, s, flags, issue.WrapWithContext(err, "read manifest", verifyPath))
	}
	if err := archive.Verify(entries, m); err != nil {
		return app.failSession(cmd, s, flags, issue.NewErrorContext().
			WithOperation("verify archive").
			WithResource(path).
			WithSuggestion("Rebuild the archive, or regenerate the manifest with --manifest").
			Wrap(err).
			BuildError())
	}
	fmt.Fprintf(app.stdout, "%s archive matches %s\n", successIcon, PathStyle.Render(verifyPath))
	return nil
}
