// SPDX-License-Identifier: MPL-2.0

// Package registry maps source roots to their bundle maps.
//
// A Registry is built once from a declarative list of roots and is read-only
// afterwards. Every root is scanned eagerly at construction, so a Registry
// describes the filesystem as it was when it was built; a later run must
// build a fresh one.
package registry

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/zipbundle/zipbundle/pkg/bundlemap"
	"github.com/zipbundle/zipbundle/pkg/fspath"
	"github.com/zipbundle/zipbundle/pkg/types"

	"github.com/charmbracelet/log"
)

// ErrDuplicateRoot is returned when two roots resolve to the same path.
var ErrDuplicateRoot = errors.New("duplicate registry root")

type (
	// Root declares one source root and how it is grafted into the archive.
	//
	// Every root is scanned when the registry is built, whether or not a build
	// later names it. A root that exists but is not a directory, or a recursive
	// root with an unreadable subdirectory, therefore makes New fail for every
	// build until the configuration is fixed.
	Root struct {
		// Path is the directory to scan. Sources name it by this exact path.
		Path types.FilesystemPath
		// Prefix is the logical directory inside the archive; empty means the archive root.
		Prefix string
		// Recursive includes nested subdirectories when true.
		Recursive bool
	}

	// Generator produces the bundle map of one root.
	Generator func(prefix string, root types.FilesystemPath, recursive bool) (bundlemap.Map, error)

	// Option configures registry construction.
	Option func(*options)

	// Registry is the read-only mapping from root path to bundle map.
	// It is safe to copy; copies share the same scan results.
	Registry struct {
		roots []Root
		maps  map[string]bundlemap.Map
	}

	options struct {
		generate Generator
		logger   *log.Logger
	}
)

// WithGenerator replaces the bundle map generator (bundlemap.Generate by default).
func WithGenerator(g Generator) Option {
	return func(o *options) {
		o.generate = g
	}
}

// WithLogger sets the logger used to report roots missing from disk.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New scans every root and returns the populated registry.
//
// A root that does not exist on disk is kept with an empty bundle map, so
// requesting it writes nothing. Any other scan failure is returned, including
// bundlemap.ErrRootNotDirectory for a root that is a regular file.
func New(roots []Root, opts ...Option) (Registry, error) {
	o := options{
		generate: bundlemap.Generate,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := Registry{
		roots: make([]Root, 0, len(roots)),
		maps:  make(map[string]bundlemap.Map, len(roots)),
	}

	for i, root := range roots {
		if isValid, errs := root.Path.IsValid(); !isValid {
			return Registry{}, fmt.Errorf("registry root %d: %w", i, errors.Join(errs...))
		}

		key := rootKey(string(root.Path))
		if _, exists := r.maps[key]; exists {
			return Registry{}, fmt.Errorf("%w: %s", ErrDuplicateRoot, root.Path)
		}

		m, err := o.generate(root.Prefix, root.Path, root.Recursive)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Registry{}, fmt.Errorf("failed to scan registry root %s: %w", root.Path, err)
			}
			o.logger.Debug("registry root not found, registering empty bundle map", "root", root.Path)
			m = bundlemap.Map{}
		}
		if isValid, errs := m.IsValid(); !isValid {
			return Registry{}, fmt.Errorf("registry root %s: %w", root.Path, errors.Join(errs...))
		}

		o.logger.Debug("registered root", "root", root.Path, "prefix", root.Prefix, "recursive", root.Recursive, "files", len(m))
		r.roots = append(r.roots, root)
		r.maps[key] = m
	}

	return r, nil
}

// Lookup returns the bundle map registered for path. The boolean is false
// when path is not a registered root.
//
// Matching is exact on the lexically cleaned path: "lib/lua/", "./lib/lua"
// and "lib/../lib/lua" all name the root "lib/lua". Parent and child
// directories of a root never match, and symlinks are not resolved.
func (r Registry) Lookup(path string) (bundlemap.Map, bool) {
	if path == "" {
		return nil, false
	}
	m, ok := r.maps[rootKey(path)]
	return m, ok
}

// Roots returns the registered roots in declaration order.
func (r Registry) Roots() []Root {
	out := make([]Root, len(r.roots))
	copy(out, r.roots)
	return out
}

// Len returns the number of registered roots.
func (r Registry) Len() int {
	return len(r.roots)
}

// rootKey normalizes a root path for exact matching, so "lib/lua/" and
// "lib/lua" name the same root.
func rootKey(path string) string {
	return string(fspath.Clean(types.FilesystemPath(path)))
}
