// SPDX-License-Identifier: MPL-2.0

// Package archive assembles deflate-compressed ZIP archives from registered
// source roots and individual files.
//
// Sources are processed strictly in order. A directory source is expanded
// through its registry bundle map; an unregistered directory is skipped
// unless strict mode is on. Any other source is stored under its base name.
// The central directory is written only after every source succeeded; on
// failure the partial output is removed. The target is truncated when the
// build starts, so a file that already existed at the target path is lost
// even when the build fails.
//
// The package also reads archives back (Inspect) and writes or verifies a
// TOML manifest of entry digests (WriteManifest, ReadManifest, Verify).
package archive
