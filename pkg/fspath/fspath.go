// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, so host paths stay typed from the
// registry through the assembler.
package fspath

import (
	"path/filepath"

	"github.com/zipbundle/zipbundle/pkg/types"
)

// JoinStr joins raw string segments onto a typed base path.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Clean wraps filepath.Clean for FilesystemPath.
func Clean(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Clean(string(p)))
}

// FromSlash converts a forward-slash path, as written in config files, to
// the host separator.
func FromSlash(p string) types.FilesystemPath {
	return types.FilesystemPath(filepath.FromSlash(p))
}

// ToSlash renders a host path with forward slashes, for config files and
// manifests that must read the same on every platform.
func ToSlash(p types.FilesystemPath) string {
	return filepath.ToSlash(string(p))
}

// BaseName returns the last element of p with forward slashes. A plain
// file source is stored in the archive under this name.
func BaseName(p types.FilesystemPath) types.ArchivePath {
	return types.ArchivePath(filepath.ToSlash(filepath.Base(string(p))))
}
