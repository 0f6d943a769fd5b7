// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInspect(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	target := tempTarget(t, fx)

	res, err := New(fx.registry).Build(target, []string{fx.libLua, fx.readme})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	entries, err := Inspect(target)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if len(entries) != len(res.Entries) {
		t.Fatalf("Inspect() returned %d entries, want %d", len(entries), len(res.Entries))
	}
	for i, e := range entries {
		w := res.Entries[i]
		if e.Name != string(w.ArchivePath) {
			t.Errorf("entry %d name = %q, want %q", i, e.Name, w.ArchivePath)
		}
		if e.Digest != w.Digest {
			t.Errorf("entry %q digest = %s, want %s", e.Name, e.Digest, w.Digest)
		}
		if e.Size != uint64(w.Size) {
			t.Errorf("entry %q size = %d, want %d", e.Name, e.Size, w.Size)
		}
		if e.Method != zip.Deflate {
			t.Errorf("entry %q method = %s, want deflate", e.Name, MethodName(e.Method))
		}
	}
}

func TestInspect_NotAnArchive(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bogus.zip")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Inspect(path); err == nil {
		t.Error("Inspect() of a non-archive should fail")
	}
}

func TestMethodName(t *testing.T) {
	t.Parallel()
	if got := MethodName(zip.Store); got != "store" {
		t.Errorf("MethodName(Store) = %q", got)
	}
	if got := MethodName(zip.Deflate); got != "deflate" {
		t.Errorf("MethodName(Deflate) = %q", got)
	}
	if got := MethodName(99); got != "method-99" {
		t.Errorf("MethodName(99) = %q", got)
	}
}

func TestManifestRoundTripAndVerify(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	target := tempTarget(t, fx)

	res, err := New(fx.registry).Build(target, []string{fx.async, fx.readme})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	manifestPath := filepath.Join(filepath.Dir(target), "out.toml")
	if err := WriteManifest(manifestPath, res); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "[[entry]]") || !strings.Contains(string(raw), "modules/async/init.lua") {
		t.Errorf("manifest does not list entries:\n%s", raw)
	}

	m, err := ReadManifest(manifestPath)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if m.Archive != "out.zip" {
		t.Errorf("Manifest.Archive = %q, want out.zip", m.Archive)
	}
	if len(m.Entries) != 2 {
		t.Fatalf("manifest has %d entries, want 2", len(m.Entries))
	}

	entries, err := Inspect(target)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if err := Verify(entries, m); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestVerify_Mismatches(t *testing.T) {
	t.Parallel()

	entries := []EntryInfo{
		{Name: "a.lua", Digest: "aa"},
		{Name: "extra.lua", Digest: "ee"},
	}
	m := &Manifest{Entries: []ManifestEntry{
		{Path: "a.lua", BLAKE3: "ab"},
		{Path: "gone.lua", BLAKE3: "gg"},
	}}

	err := Verify(entries, m)
	if !errors.Is(err, ErrManifestMismatch) {
		t.Fatalf("Verify() error = %v, want ErrManifestMismatch", err)
	}
	for _, want := range []string{"a.lua: digest", "missing entry gone.lua", "unexpected entry extra.lua"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Verify() error should mention %q, got %v", want, err)
		}
	}
}

func TestVerify_LastDuplicateWins(t *testing.T) {
	t.Parallel()

	entries := []EntryInfo{{Name: "README.md", Digest: "first"}, {Name: "README.md", Digest: "second"}}
	m := &Manifest{Entries: []ManifestEntry{
		{Path: "README.md", BLAKE3: "first"},
		{Path: "README.md", BLAKE3: "second"},
	}}
	if err := Verify(entries, m); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestReadManifest_Invalid(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[[entry]\npath = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadManifest(path); err == nil {
		t.Error("ReadManifest() of invalid TOML should fail")
	}
}
