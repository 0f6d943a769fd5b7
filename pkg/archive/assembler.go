// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zipbundle/zipbundle/pkg/fspath"
	"github.com/zipbundle/zipbundle/pkg/registry"
	"github.com/zipbundle/zipbundle/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/flate"
	"github.com/zeebo/blake3"
)

var errNotRegular = errors.New("not a regular file")

// reproducibleTime is the earliest timestamp the ZIP DOS date format can hold.
var reproducibleTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

type (
	// Assembler writes archives for one registry.
	Assembler struct {
		registry     registry.Registry
		strict       bool
		level        int
		reproducible bool
		logger       *log.Logger
	}

	// Option configures an Assembler.
	Option func(*Assembler)

	// Written describes one entry added to the archive.
	Written struct {
		ArchivePath types.ArchivePath
		SourcePath  types.FilesystemPath
		// Size is the uncompressed length in bytes.
		Size int64
		// Digest is the hex BLAKE3-256 of the uncompressed contents.
		Digest string
	}

	// Result summarizes a finished Build.
	Result struct {
		// Target is the path of the finalized archive.
		Target string
		// Entries lists every entry in write order.
		Entries []Written
		// Skipped lists directory sources that had no registry entry.
		Skipped []string
		// Collisions counts entries whose archive path was already written.
		// Readers resolve these by taking the last one.
		Collisions int
	}

	// sourceReader remembers read failures so they can be told apart from
	// write failures after io.Copy returns.
	sourceReader struct {
		r   io.Reader
		err error
	}
)

// WithStrict makes unregistered directory sources an error instead of a skip.
func WithStrict(strict bool) Option {
	return func(a *Assembler) {
		a.strict = strict
	}
}

// WithLevel sets the deflate compression level (flate.HuffmanOnly through flate.BestCompression).
func WithLevel(level int) Option {
	return func(a *Assembler) {
		a.level = level
	}
}

// WithReproducible pins entry timestamps and modes so identical inputs give
// byte-identical archives.
func WithReproducible(reproducible bool) Option {
	return func(a *Assembler) {
		a.reproducible = reproducible
	}
}

// WithLogger sets the logger for per-entry and summary messages.
func WithLogger(l *log.Logger) Option {
	return func(a *Assembler) {
		a.logger = l
	}
}

// New creates an Assembler over reg. The registry is taken by value and
// never modified.
func New(reg registry.Registry, opts ...Option) *Assembler {
	a := &Assembler{
		registry: reg,
		level:    flate.DefaultCompression,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build writes the archive at target from sources, in order.
//
// The target is created or truncated; its parent directory must exist.
// On any error the partially written file is removed and the returned
// Result is nil.
func (a *Assembler) Build(target string, sources []string) (res *Result, err error) {
	if a.level < flate.HuffmanOnly || a.level > flate.BestCompression {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, a.level)
	}
	for i, source := range sources {
		if source == "" {
			return nil, fmt.Errorf("source %d: %w", i, ErrEmptySource)
		}
	}

	f, err := os.Create(target)
	if err != nil {
		return nil, targetError(target, err)
	}

	zw := zip.NewWriter(f)
	level := a.level
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})

	defer func() {
		if err == nil {
			return
		}
		// The archive is never finalized on failure; drop what was written.
		_ = f.Close()
		if rmErr := os.Remove(target); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			a.logger.Warn("failed to remove partial archive", "target", target, "err", rmErr)
		}
		res = nil
	}()

	res = &Result{Target: target}
	seen := make(map[types.ArchivePath]struct{})

	for _, source := range sources {
		if err := a.addSource(zw, res, seen, source); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, targetError(target, fmt.Errorf("failed to finalize archive: %w", err))
	}
	if err := f.Close(); err != nil {
		return nil, targetError(target, err)
	}

	a.logger.Info("archive finalized",
		"target", target,
		"entries", len(res.Entries),
		"skipped", len(res.Skipped),
		"collisions", res.Collisions,
	)
	return res, nil
}

// addSource expands one command-line source into archive entries.
func (a *Assembler) addSource(zw *zip.Writer, res *Result, seen map[types.ArchivePath]struct{}, source string) error {
	info, statErr := os.Stat(source)
	if statErr == nil && info.IsDir() {
		m, ok := a.registry.Lookup(source)
		if !ok {
			if a.strict {
				return &Error{Kind: KindRootNotRegistered, Path: source}
			}
			a.logger.Debug("skipping unregistered directory", "source", source)
			res.Skipped = append(res.Skipped, source)
			return nil
		}

		a.logger.Debug("expanding registered root", "source", source, "files", len(m))
		for _, entry := range m {
			if err := a.writeEntry(zw, res, seen, entry.SourcePath, entry.ArchivePath); err != nil {
				return err
			}
		}
		return nil
	}

	// Plain files keep only their base name; a missing source fails on open.
	name := fspath.BaseName(types.FilesystemPath(source))
	return a.writeEntry(zw, res, seen, types.FilesystemPath(source), name)
}

// writeEntry streams one source file into the archive under name.
func (a *Assembler) writeEntry(zw *zip.Writer, res *Result, seen map[types.ArchivePath]struct{}, src types.FilesystemPath, name types.ArchivePath) error {
	srcPath := string(src)

	f, err := os.Open(srcPath)
	if err != nil {
		return sourceError(srcPath, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return sourceError(srcPath, err)
	}
	if !info.Mode().IsRegular() {
		return &Error{Kind: KindSourceUnreadable, Path: srcPath, Err: errNotRegular}
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return sourceError(srcPath, fmt.Errorf("failed to create file header: %w", err))
	}
	header.Name = string(name)
	header.Method = zip.Deflate
	if a.reproducible {
		header.Modified = reproducibleTime
		header.SetMode(0o644)
	}

	if _, dup := seen[name]; dup {
		res.Collisions++
		a.logger.Warn("duplicate archive path, last write wins", "entry", name, "source", srcPath)
	}
	seen[name] = struct{}{}

	w, err := zw.CreateHeader(header)
	if err != nil {
		return targetError(res.Target, fmt.Errorf("failed to create entry %s: %w", name, err))
	}

	hasher := blake3.New()
	sr := &sourceReader{r: f}
	n, err := io.Copy(io.MultiWriter(w, hasher), sr)
	if err != nil {
		if sr.err != nil {
			return &Error{Kind: KindSourceUnreadable, Path: srcPath, Err: sr.err}
		}
		return targetError(res.Target, fmt.Errorf("failed to write entry %s: %w", name, err))
	}

	res.Entries = append(res.Entries, Written{
		ArchivePath: name,
		SourcePath:  src,
		Size:        n,
		Digest:      hex.EncodeToString(hasher.Sum(nil)),
	})
	a.logger.Debug("added entry", "entry", name, "source", srcPath, "bytes", n)
	return nil
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	return n, err
}
