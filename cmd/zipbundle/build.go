// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/flate"
	"github.com/spf13/cobra"

	"github.com/zipbundle/zipbundle/internal/config"
	"github.com/zipbundle/zipbundle/internal/issue"
	"github.com/zipbundle/zipbundle/pkg/archive"
)

// buildFlags override the archive section of the configuration when set.
type buildFlags struct {
	strict       bool
	level        int
	reproducible bool
	manifest     string
}

func (b *buildFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&b.strict, "strict", false, "fail on directory sources that are not registered roots")
	f.IntVar(&b.level, "level", flate.DefaultCompression, "deflate level, -1 (default) through 9")
	f.BoolVar(&b.reproducible, "reproducible", false, "pin entry timestamps and modes for byte-identical output")
	f.StringVar(&b.manifest, "manifest", "", "write a TOML manifest of the archive entries to this path")
}

// apply overlays the flags the user actually set on the configured defaults.
func (b *buildFlags) apply(cmd *cobra.Command, cfg config.ArchiveConfig) config.ArchiveConfig {
	f := cmd.Flags()
	if f.Changed("strict") {
		cfg.Strict = b.strict
	}
	if f.Changed("level") {
		cfg.Level = b.level
	}
	if f.Changed("reproducible") {
		cfg.Reproducible = b.reproducible
	}
	if f.Changed("manifest") {
		cfg.Manifest = b.manifest
	}
	return cfg
}

func runBuild(cmd *cobra.Command, app *App, flags *rootFlags, build *buildFlags, target string, sources []string) error {
	s, err := app.newSession(cmd.Context(), flags)
	if err != nil {
		return app.failSession(cmd, nil, flags, err)
	}

	opts := build.apply(cmd, s.cfg.Archive)

	reg, err := s.registry()
	if err != nil {
		return app.failSession(cmd, s, flags, err)
	}

	asm := archive.New(reg,
		archive.WithStrict(opts.Strict),
		archive.WithLevel(opts.Level),
		archive.WithReproducible(opts.Reproducible),
		archive.WithLogger(s.logger),
	)

	res, err := asm.Build(target, sources)
	if err != nil {
		return app.failSession(cmd, s, flags, describeBuildError(target, err))
	}

	if opts.Manifest != "" {
		if err := archive.WriteManifest(opts.Manifest, res); err != nil {
			return app.failSession(cmd, s, flags, issue.NewErrorContext().
				WithOperation("write manifest").
				WithResource(opts.Manifest).
				WithSuggestion("Check that the manifest directory is writable").
				WithIssue(issue.TargetUnwritableId).
				Wrap(err).
				BuildError())
		}
	}

	for _, dir := range res.Skipped {
		fmt.Fprintf(app.stderr, "%s skipped unregistered directory %s\n", warningIcon, PathStyle.Render(dir))
	}
	if res.Collisions > 0 {
		fmt.Fprintf(app.stderr, "%s %d duplicate archive path(s); readers keep the last entry\n", warningIcon, res.Collisions)
	}

	fmt.Fprintf(app.stdout, "%s wrote %d entries to %s\n", successIcon, len(res.Entries), PathStyle.Render(res.Target))
	if s.verbose {
		for _, e := range res.Entries {
			fmt.Fprintf(app.stdout, "  %s %s\n", e.ArchivePath, VerboseStyle.Render("<- "+string(e.SourcePath)))
		}
	}
	if opts.Manifest != "" {
		fmt.Fprintf(app.stdout, "%s manifest written to %s\n", successIcon, PathStyle.Render(opts.Manifest))
	}
	return nil
}

// describeBuildError attaches remediation hints to an assembler failure.
func describeBuildError(target string, err error) error {
	var aerr *archive.Error
	if !errors.As(err, &aerr) {
		return issue.NewErrorContext().
			WithOperation("build archive").
			WithResource(target).
			Wrap(err).
			BuildError()
	}

	ctx := issue.NewErrorContext().
		WithOperation("build archive").
		WithResource(target).
		Wrap(err)

	switch aerr.Kind {
	case archive.KindSourceNotFound:
		ctx.WithIssue(issue.SourceNotFoundId).
			WithSuggestion("Check the source path; sources are relative to the working directory")
	case archive.KindSourceUnreadable:
		ctx.WithIssue(issue.SourceUnreadableId).
			WithSuggestion("Check that the source is a regular file readable by the current user")
	case archive.KindTargetUnwritable:
		ctx.WithIssue(issue.TargetUnwritableId).
			WithSuggestion("Check that the target directory exists and is writable")
	case archive.KindRootNotRegistered:
		ctx.WithIssue(issue.RootNotRegisteredId).
			WithSuggestions(
				"Run 'zipbundle registry' to list registered roots",
				"Drop --strict to skip unregistered directories",
			)
	}
	return ctx.BuildError()
}
