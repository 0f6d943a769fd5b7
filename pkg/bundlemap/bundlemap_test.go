// SPDX-License-Identifier: MPL-2.0

package bundlemap

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/zipbundle/zipbundle/internal/testutil"
	"github.com/zipbundle/zipbundle/pkg/types"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		files     map[string]string
		prefix    string
		recursive bool
		want      []types.ArchivePath
	}{
		{
			name:      "recursive with empty prefix",
			files:     map[string]string{"a.lua": "a", "sub/b.lua": "b"},
			prefix:    "",
			recursive: true,
			want:      []types.ArchivePath{"a.lua", "sub/b.lua"},
		},
		{
			name:      "non-recursive skips nested directories",
			files:     map[string]string{"init.lua": "i", "lib/util.lua": "u", "z.lua": "z"},
			prefix:    "modules/async",
			recursive: false,
			want:      []types.ArchivePath{"modules/async/init.lua", "modules/async/z.lua"},
		},
		{
			name:      "recursive with prefix",
			files:     map[string]string{"init.lua": "i", "lib/util.lua": "u", "lib/deep/x.lua": "x"},
			prefix:    "modules/monitoring/default",
			recursive: true,
			want: []types.ArchivePath{
				"modules/monitoring/default/init.lua",
				"modules/monitoring/default/lib/deep/x.lua",
				"modules/monitoring/default/lib/util.lua",
			},
		},
		{
			name:      "prefix is normalized",
			files:     map[string]string{"a.lua": "a"},
			prefix:    "/modules//bourbon/",
			recursive: false,
			want:      []types.ArchivePath{"modules/bourbon/a.lua"},
		},
		{
			name:      "prefix cannot escape the archive root",
			files:     map[string]string{"a.lua": "a"},
			prefix:    "../outside",
			recursive: false,
			want:      []types.ArchivePath{"outside/a.lua"},
		},
		{
			name:      "empty root",
			files:     map[string]string{},
			recursive: true,
			want:      []types.ArchivePath{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			testutil.WriteTree(t, root, tt.files)

			m, err := Generate(tt.prefix, types.FilesystemPath(root), tt.recursive)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}

			got := archivePaths(m)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Generate() archive paths = %v, want %v", got, tt.want)
			}
			if isValid, errs := m.IsValid(); !isValid {
				t.Errorf("IsValid() errors = %v", errs)
			}

			for _, e := range m {
				if !strings.HasPrefix(string(e.SourcePath), root) {
					t.Errorf("source path %q is not under root %q", e.SourcePath, root)
				}
				if _, err := os.Stat(string(e.SourcePath)); err != nil {
					t.Errorf("source path %q does not exist: %v", e.SourcePath, err)
				}
			}
		})
	}
}

func TestGenerate_SourcePathsMatchArchivePaths(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"sub/b.lua": "return 2"})

	m, err := Generate("lib", types.FilesystemPath(root), true)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(m) != 1 {
		t.Fatalf("Generate() returned %d entries, want 1", len(m))
	}

	wantSource := filepath.Join(root, "sub", "b.lua")
	if string(m[0].SourcePath) != wantSource {
		t.Errorf("SourcePath = %q, want %q", m[0].SourcePath, wantSource)
	}
	if m[0].ArchivePath != "lib/sub/b.lua" {
		t.Errorf("ArchivePath = %q, want %q", m[0].ArchivePath, "lib/sub/b.lua")
	}
}

func TestGenerate_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on Windows")
	}
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"real.lua": "r"})
	if err := os.Symlink(filepath.Join(root, "real.lua"), filepath.Join(root, "link.lua")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "missing.lua"), filepath.Join(root, "dangling.lua")); err != nil {
		t.Fatal(err)
	}

	m, err := Generate("", types.FilesystemPath(root), false)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := []types.ArchivePath{"link.lua", "real.lua"}
	if got := archivePaths(m); !slices.Equal(got, want) {
		t.Errorf("Generate() archive paths = %v, want %v", got, want)
	}
}

func TestGenerate_SymlinkedRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on Windows")
	}
	t.Parallel()

	dir := t.TempDir()
	realDir := filepath.Join(dir, "real")
	testutil.WriteTree(t, realDir, map[string]string{"a.lua": "a"})
	link := filepath.Join(dir, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Fatal(err)
	}

	m, err := Generate("", types.FilesystemPath(link), true)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := []types.ArchivePath{"a.lua"}
	if got := archivePaths(m); !slices.Equal(got, want) {
		t.Errorf("Generate() archive paths = %v, want %v", got, want)
	}
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"file.lua": "x"})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		_, err := Generate("", types.FilesystemPath(filepath.Join(dir, "nope")), true)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Generate() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		t.Parallel()
		_, err := Generate("", types.FilesystemPath(filepath.Join(dir, "file.lua")), true)
		if !errors.Is(err, ErrRootNotDirectory) {
			t.Errorf("Generate() error = %v, want ErrRootNotDirectory", err)
		}
	})

	t.Run("empty root path", func(t *testing.T) {
		t.Parallel()
		_, err := Generate("", "", true)
		if !errors.Is(err, types.ErrInvalidFilesystemPath) {
			t.Errorf("Generate() error = %v, want ErrInvalidFilesystemPath", err)
		}
	})
}

func TestArchivePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		rel    string
		want   types.ArchivePath
	}{
		{"", "a.lua", "a.lua"},
		{"modules/keystone", "init.lua", "modules/keystone/init.lua"},
		{"modules", filepath.Join("sub", "b.lua"), "modules/sub/b.lua"},
		{`modules\windows`, "c.lua", "modules/windows/c.lua"},
	}

	for _, tt := range tests {
		if got := ArchivePath(tt.prefix, tt.rel); got != tt.want {
			t.Errorf("ArchivePath(%q, %q) = %q, want %q", tt.prefix, tt.rel, got, tt.want)
		}
	}
}

func TestMap_IsValid(t *testing.T) {
	t.Parallel()

	m := Map{
		{SourcePath: "a.lua", ArchivePath: "a.lua"},
		{SourcePath: "b.lua", ArchivePath: "/b.lua"},
		{SourcePath: "c.lua", ArchivePath: `sub\c.lua`},
	}
	isValid, errs := m.IsValid()
	if isValid {
		t.Fatal("IsValid() = true, want false")
	}
	if len(errs) != 2 {
		t.Fatalf("IsValid() returned %d errors, want 2: %v", len(errs), errs)
	}
	for i, want := range []string{"b.lua", "c.lua"} {
		if !errors.Is(errs[i], types.ErrInvalidArchivePath) {
			t.Errorf("errs[%d] = %v, want ErrInvalidArchivePath", i, errs[i])
		}
		if !strings.Contains(errs[i].Error(), want) {
			t.Errorf("errs[%d] = %v, should mention %s", i, errs[i], want)
		}
	}
}

func archivePaths(m Map) []types.ArchivePath {
	paths := make([]types.ArchivePath, len(m))
	for i, e := range m {
		paths[i] = e.ArchivePath
	}
	return paths
}
