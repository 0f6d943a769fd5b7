// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"mvdan.cc/sh/v3/shell"

	"github.com/zipbundle/zipbundle/internal/issue"
	"github.com/zipbundle/zipbundle/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "zipbundle"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFile is looked up in the working directory when the user
	// config directory has no config file.
	LocalConfigFile = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides, e.g. ZIPBUNDLE_ARCHIVE_STRICT.
	EnvPrefix = "ZIPBUNDLE"
	// MaxConfigFileSize bounds the config file size in bytes.
	MaxConfigFileSize int64 = 1 << 20
)

// ErrConfigExists is returned by CreateDefaultConfig when the file is already there.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the zipbundle directory under the platform's user
// configuration directory.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// ResolvePath reports the config file Load would read, or "" when no file
// exists and the defaults apply.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", configNotFound(opts.ConfigFilePath)
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	for _, candidate := range []string{
		filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
		LocalConfigFile,
	} {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// loadWithOptions layers defaults, the resolved CUE file and ZIPBUNDLE_*
// environment overrides, in that order of increasing precedence.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("registry", rootMaps(defaults.Registry))
	v.SetDefault("archive.strict", defaults.Archive.Strict)
	v.SetDefault("archive.level", defaults.Archive.Level)
	v.SetDefault("archive.reproducible", defaults.Archive.Reproducible)
	v.SetDefault("archive.manifest", defaults.Archive.Manifest)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	resolvedPath, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'zipbundle config dump' to see a valid configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := expandRoots(cfg.Registry, opts.getenv()); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("expand registry roots").
			WithResource(resolvedPath).
			WithSuggestion("Check the $VAR references in registry root paths").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	if ok, errs := cfg.IsValid(); !ok {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Give every registry entry a distinct, non-empty root").
			WithSuggestion("Keep archive.level between -1 and 9").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges its
// fields over the defaults already set on v.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, "#Config", data,
		cueutil.WithFilename(path),
		cueutil.WithMaxFileSize(MaxConfigFileSize),
		cueutil.WithConcrete(true),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// expandRoots rewrites every root in place with shell parameter expansion.
// Unset variables expand to the empty string, as in a POSIX shell.
func expandRoots(entries []RootEntry, getenv func(string) string) error {
	for i := range entries {
		expanded, err := shell.Expand(entries[i].Root, getenv)
		if err != nil {
			return fmt.Errorf("registry[%d] %q: %w", i, entries[i].Root, err)
		}
		entries[i].Root = expanded
	}
	return nil
}

// rootMaps turns entries into the generic shape a CUE file decodes to, so
// defaults and file values reach Unmarshal in the same form.
func rootMaps(entries []RootEntry) []any {
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"root":      e.Root,
			"prefix":    e.Prefix,
			"recursive": e.Recursive,
		})
	}
	return out
}

func configNotFound(path string) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Verify the file path is correct").
		WithSuggestion("Run 'zipbundle config init' to create a default configuration").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(fmt.Errorf("config file not found: %w", fs.ErrNotExist)).
		BuildError()
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration into the config
// directory and returns its path. An existing file is left untouched and
// reported with ErrConfigExists unless force is set.
func CreateDefaultConfig(opts LoadOptions, force bool) (string, error) {
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if !force && fileExists(cfgPath) {
		return cfgPath, fmt.Errorf("%w: %s", ErrConfigExists, cfgPath)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE renders cfg as a config file that loads back to the same values.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// zipbundle configuration file.\n")
	sb.WriteString("// Omitted fields keep their built-in defaults.\n\n")

	sb.WriteString("registry: [\n")
	for _, e := range cfg.Registry {
		fmt.Fprintf(&sb, "\t{root: %q, prefix: %q, recursive: %v},\n", e.Root, e.Prefix, e.Recursive)
	}
	sb.WriteString("]\n")

	sb.WriteString("\narchive: {\n")
	fmt.Fprintf(&sb, "\tstrict:       %v\n", cfg.Archive.Strict)
	fmt.Fprintf(&sb, "\tlevel:        %d\n", cfg.Archive.Level)
	fmt.Fprintf(&sb, "\treproducible: %v\n", cfg.Archive.Reproducible)
	if cfg.Archive.Manifest != "" {
		fmt.Fprintf(&sb, "\tmanifest:     %q\n", cfg.Archive.Manifest)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
