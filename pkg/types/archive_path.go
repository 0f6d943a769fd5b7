// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalidArchivePath is the sentinel error wrapped by InvalidArchivePathError.
var ErrInvalidArchivePath = errors.New("invalid archive path")

type (
	// ArchivePath is the name of an entry inside the output archive.
	// It is always relative and forward-slash separated, whatever the host
	// OS, because downstream loaders resolve modules by these names.
	ArchivePath string

	// InvalidArchivePathError is returned when an ArchivePath is empty,
	// absolute, carries a backslash, or escapes the archive root.
	InvalidArchivePathError struct {
		Value  ArchivePath
		Reason string
	}
)

// String returns the string representation of the ArchivePath.
func (p ArchivePath) String() string { return string(p) }

// IsValid returns whether the path can be used as a portable entry name,
// and a list of validation errors if it cannot.
func (p ArchivePath) IsValid() (bool, []error) {
	var reason string
	s := string(p)
	switch {
	case strings.TrimSpace(s) == "":
		reason = "must be non-empty"
	case strings.HasPrefix(s, "/"):
		reason = "must be relative"
	case strings.Contains(s, `\`):
		reason = "must use forward slashes"
	case path.Clean(s) != s:
		reason = "must be normalized"
	case s == ".." || strings.HasPrefix(s, "../"):
		reason = "must not escape the archive root"
	}
	if reason != "" {
		return false, []error{&InvalidArchivePathError{Value: p, Reason: reason}}
	}
	return true, nil
}

// Error implements the error interface for InvalidArchivePathError.
func (e *InvalidArchivePathError) Error() string {
	return fmt.Sprintf("invalid archive path %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidArchivePath for errors.Is() compatibility.
func (e *InvalidArchivePathError) Unwrap() error { return ErrInvalidArchivePath }
