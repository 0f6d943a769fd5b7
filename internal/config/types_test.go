// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scheme ColorScheme
		want   bool
	}{
		{ColorSchemeAuto, true},
		{ColorSchemeDark, true},
		{ColorSchemeLight, true},
		{"", false},
		{"DARK", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			t.Parallel()
			ok, errs := tt.scheme.IsValid()
			if ok != tt.want {
				t.Errorf("ColorScheme(%q).IsValid() = %v, want %v", tt.scheme, ok, tt.want)
			}
			if !tt.want && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidColorScheme)) {
				t.Errorf("error should wrap ErrInvalidColorScheme, got: %v", errs)
			}
		})
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	valid := func() Config { return *DefaultConfig() }

	tests := []struct {
		name   string
		mutate func(*Config)
		wantIs []error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:   "empty root",
			mutate: func(c *Config) { c.Registry = []RootEntry{{Root: ""}} },
			wantIs: []error{ErrInvalidConfig, ErrInvalidRootEntry},
		},
		{
			name: "duplicate after cleaning",
			mutate: func(c *Config) {
				c.Registry = []RootEntry{{Root: "lib/lua"}, {Root: "./lib/lua"}}
			},
			wantIs: []error{ErrInvalidConfig, ErrDuplicateRoot},
		},
		{
			name:   "level too low",
			mutate: func(c *Config) { c.Archive.Level = -2 },
			wantIs: []error{ErrInvalidLevel},
		},
		{
			name:   "level too high",
			mutate: func(c *Config) { c.Archive.Level = 10 },
			wantIs: []error{ErrInvalidLevel},
		},
		{
			name:   "color scheme",
			mutate: func(c *Config) { c.UI.ColorScheme = "sepia" },
			wantIs: []error{ErrInvalidColorScheme},
		},
		{
			name: "every problem reported",
			mutate: func(c *Config) {
				c.Registry = []RootEntry{{Root: ""}}
				c.Archive.Level = 42
			},
			wantIs: []error{ErrInvalidRootEntry, ErrInvalidLevel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)

			ok, errs := cfg.IsValid()
			if len(tt.wantIs) == 0 {
				if !ok {
					t.Errorf("IsValid() = false: %v", errs)
				}
				return
			}
			if ok || len(errs) != 1 {
				t.Fatalf("IsValid() = %v, %v; want one InvalidConfigError", ok, errs)
			}
			var cfgErr *InvalidConfigError
			if !errors.As(errs[0], &cfgErr) {
				t.Fatalf("error should be *InvalidConfigError, got %T", errs[0])
			}
			for _, want := range tt.wantIs {
				if !errors.Is(errs[0], want) {
					t.Errorf("error should wrap %v, got: %v", want, errs[0])
				}
			}
		})
	}
}
