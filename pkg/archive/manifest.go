// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/zipbundle/zipbundle/pkg/fspath"
)

type (
	// Manifest records the entry layout of a built archive. Downstream
	// loaders depend on these names, so a manifest lets a rebuild be
	// checked against the previous one.
	Manifest struct {
		Archive string          `toml:"archive"`
		Entries []ManifestEntry `toml:"entry"`
	}

	// ManifestEntry is one archive entry in a Manifest.
	ManifestEntry struct {
		Path   string `toml:"path"`
		Source string `toml:"source"`
		Size   int64  `toml:"size"`
		BLAKE3 string `toml:"blake3"`
	}
)

// NewManifest builds the manifest of a finished Build.
func NewManifest(res *Result) *Manifest {
	m := &Manifest{
		Archive: filepath.Base(res.Target),
		Entries: make([]ManifestEntry, 0, len(res.Entries)),
	}
	for _, e := range res.Entries {
		m.Entries = append(m.Entries, ManifestEntry{
			Path:   string(e.ArchivePath),
			Source: fspath.ToSlash(e.SourcePath),
			Size:   e.Size,
			BLAKE3: e.Digest,
		})
	}
	return m
}

// WriteManifest writes the TOML manifest of res to path.
func WriteManifest(path string, res *Result) error {
	data, err := toml.Marshal(NewManifest(res))
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest parses the TOML manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Verify compares archive entries against a manifest. With duplicate names
// the last entry counts, matching how readers resolve them. Every mismatch
// is reported; the joined error wraps ErrManifestMismatch.
func Verify(entries []EntryInfo, m *Manifest) error {
	got := make(map[string]EntryInfo, len(entries))
	for _, e := range entries {
		got[e.Name] = e
	}
	want := make(map[string]ManifestEntry, len(m.Entries))
	for _, e := range m.Entries {
		want[e.Path] = e
	}

	var errs []error
	for _, w := range m.Entries {
		g, ok := got[w.Path]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: missing entry %s", ErrManifestMismatch, w.Path))
			continue
		}
		if want[w.Path] != w {
			// superseded by a later duplicate in the manifest
			continue
		}
		if g.Digest != w.BLAKE3 {
			errs = append(errs, fmt.Errorf("%w: %s: digest %s, want %s", ErrManifestMismatch, w.Path, g.Digest, w.BLAKE3))
		}
	}
	for _, e := range entries {
		if _, ok := want[e.Name]; !ok {
			errs = append(errs, fmt.Errorf("%w: unexpected entry %s", ErrManifestMismatch, e.Name))
		}
	}
	return errors.Join(errs...)
}
