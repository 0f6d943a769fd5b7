// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/zipbundle/zipbundle/pkg/fspath"
	"github.com/zipbundle/zipbundle/pkg/registry"
	"github.com/zipbundle/zipbundle/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// MinLevel and MaxLevel bound ArchiveConfig.Level.
	MinLevel = flate.DefaultCompression
	MaxLevel = flate.BestCompression
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRootEntry is the sentinel error wrapped by InvalidRootEntryError.
	ErrInvalidRootEntry = errors.New("invalid registry root")
	// ErrDuplicateRoot is returned when two registry entries clean to the same path.
	ErrDuplicateRoot = errors.New("duplicate registry root")
	// ErrInvalidLevel is returned when the compression level is out of range.
	ErrInvalidLevel = errors.New("invalid compression level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidRootEntryError reports a registry entry that cannot become a root.
	InvalidRootEntryError struct {
		Index  int
		Root   string
		Reason string
	}

	// InvalidConfigError collects every field-level problem of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// RootEntry is one registry root as written in the config file.
	// Root uses forward slashes and may reference environment variables.
	RootEntry struct {
		Root      string `json:"root" mapstructure:"root"`
		Prefix    string `json:"prefix" mapstructure:"prefix"`
		Recursive bool   `json:"recursive" mapstructure:"recursive"`
	}

	// ArchiveConfig holds defaults for the build command's flags.
	ArchiveConfig struct {
		// Strict fails the build on directories that are not registered roots.
		Strict bool `json:"strict" mapstructure:"strict"`
		// Level is the deflate level, -1 (default) through 9.
		Level int `json:"level" mapstructure:"level"`
		// Reproducible pins entry timestamps and modes.
		Reproducible bool `json:"reproducible" mapstructure:"reproducible"`
		// Manifest, when set, is where a TOML manifest is written after each build.
		Manifest string `json:"manifest" mapstructure:"manifest"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}

	// Config holds the application configuration.
	Config struct {
		Registry []RootEntry   `json:"registry" mapstructure:"registry"`
		Archive  ArchiveConfig `json:"archive" mapstructure:"archive"`
		UI       UIConfig      `json:"ui" mapstructure:"ui"`
	}
)

// DefaultConfig returns the built-in configuration: the default registry
// roots, non-strict builds at the default deflate level.
func DefaultConfig() *Config {
	roots := registry.DefaultRoots()
	entries := make([]RootEntry, 0, len(roots))
	for _, r := range roots {
		entries = append(entries, RootEntry{
			Root:      fspath.ToSlash(r.Path),
			Prefix:    r.Prefix,
			Recursive: r.Recursive,
		})
	}

	return &Config{
		Registry: entries,
		Archive: ArchiveConfig{
			Level: flate.DefaultCompression,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Roots converts the registry entries into host-path registry roots.
func (c *Config) Roots() []registry.Root {
	roots := make([]registry.Root, 0, len(c.Registry))
	for _, e := range c.Registry {
		roots = append(roots, registry.Root{
			Path:      fspath.FromSlash(e.Root),
			Prefix:    e.Prefix,
			Recursive: e.Recursive,
		})
	}
	return roots
}

// IsValid checks the constraints the CUE schema cannot express: root paths
// must be non-blank and unique after cleaning.
func (c Config) IsValid() (bool, []error) {
	var errs []error

	seen := make(map[types.FilesystemPath]int, len(c.Registry))
	for i, e := range c.Registry {
		if strings.TrimSpace(e.Root) == "" {
			errs = append(errs, &InvalidRootEntryError{Index: i, Root: e.Root, Reason: "root path is empty"})
			continue
		}
		key := fspath.Clean(fspath.FromSlash(e.Root))
		if first, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%w: registry[%d] %q repeats registry[%d]", ErrDuplicateRoot, i, e.Root, first))
			continue
		}
		seen[key] = i
	}

	if c.Archive.Level < MinLevel || c.Archive.Level > MaxLevel {
		errs = append(errs, fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidLevel, c.Archive.Level, MinLevel, MaxLevel))
	}

	if ok, uiErrs := c.UI.ColorScheme.IsValid(); !ok {
		errs = append(errs, uiErrs...)
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap exposes the sentinel and every field error to errors.Is and errors.As.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

func (e *InvalidRootEntryError) Error() string {
	return fmt.Sprintf("registry[%d] %q: %s", e.Index, e.Root, e.Reason)
}

func (e *InvalidRootEntryError) Unwrap() error { return ErrInvalidRootEntry }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }
