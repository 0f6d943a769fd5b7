// SPDX-License-Identifier: MPL-2.0

// Package bundlemap computes bundle maps: the ordered list of files found
// under a source root together with the archive path each one is written to.
//
// Archive paths are the root-relative path of each file grafted onto a
// logical prefix and always use forward slashes, so an archive built on
// Windows names its entries exactly like one built on Linux:
//
//	Generate("modules/async", "lua_modules/async", false)
//	// lua_modules/async/init.lua -> modules/async/init.lua
package bundlemap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zipbundle/zipbundle/pkg/types"
)

// ErrRootNotDirectory is returned when a bundle root exists but is not a directory.
var ErrRootNotDirectory = errors.New("bundle root is not a directory")

type (
	// Entry pairs a file on disk with its name inside the archive.
	Entry struct {
		// SourcePath is the host path of the file, rooted like the scanned root.
		SourcePath types.FilesystemPath
		// ArchivePath is the relative, slash-separated entry name.
		ArchivePath types.ArchivePath
	}

	// Map is the ordered bundle map of one source root.
	Map []Entry
)

// Generate scans root and returns its bundle map.
//
// When recursive is false only the regular files directly inside root are
// listed; otherwise the whole subtree is. Entries come out in lexical walk
// order, which keeps archives stable across rebuilds.
func Generate(prefix string, root types.FilesystemPath, recursive bool) (Map, error) {
	if isValid, errs := root.IsValid(); !isValid {
		return nil, errors.Join(errs...)
	}

	rootPath := string(root)
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat bundle root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", rootPath, ErrRootNotDirectory)
	}

	prefix = normalizePrefix(prefix)

	// A trailing separator makes the walk descend into a symlinked root.
	walkRoot := rootPath
	if linfo, lerr := os.Lstat(rootPath); lerr == nil && linfo.Mode()&fs.ModeSymlink != 0 {
		walkRoot = rootPath + string(filepath.Separator)
	}

	var m Map
	err = filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if p != walkRoot && !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		ok, err := isFile(p, d)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		relPath, err := filepath.Rel(rootPath, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		m = append(m, Entry{
			SourcePath:  types.FilesystemPath(p),
			ArchivePath: ArchivePath(prefix, relPath),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk bundle root %s: %w", rootPath, err)
	}

	return m, nil
}

// ArchivePath joins prefix and a host-relative path into an entry name.
func ArchivePath(prefix, relPath string) types.ArchivePath {
	return types.ArchivePath(path.Join(normalizePrefix(prefix), filepath.ToSlash(relPath)))
}

// IsValid reports whether every archive path in the map is portable, and
// the errors of the entries that are not.
func (m Map) IsValid() (bool, []error) {
	var errs []error
	for _, e := range m {
		if isValid, pathErrs := e.ArchivePath.IsValid(); !isValid {
			for _, err := range pathErrs {
				errs = append(errs, fmt.Errorf("%s: %w", e.SourcePath, err))
			}
		}
	}
	return len(errs) == 0, errs
}

// normalizePrefix turns a user-supplied prefix into a clean relative
// slash path. "" and "/" both mean the archive root.
func normalizePrefix(prefix string) string {
	prefix = strings.ReplaceAll(prefix, `\`, "/")
	prefix = strings.Trim(path.Clean("/"+prefix), "/")
	return prefix
}

// isFile reports whether d is a regular file or a symlink to one.
func isFile(p string, d fs.DirEntry) (bool, error) {
	if d.Type().IsRegular() {
		return true, nil
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// dangling link
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
