// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
	"io/fs"
)

const (
	// KindSourceNotFound means a source file named on the command line or in
	// a bundle map does not exist.
	KindSourceNotFound ErrorKind = iota + 1
	// KindSourceUnreadable means a source exists but could not be read.
	KindSourceUnreadable
	// KindTargetUnwritable means the archive could not be created, written or finalized.
	KindTargetUnwritable
	// KindRootNotRegistered means a directory source has no registry entry
	// and the assembler runs in strict mode.
	KindRootNotRegistered
)

var (
	// ErrSourceNotFound is wrapped by every KindSourceNotFound error.
	ErrSourceNotFound = errors.New("source not found")
	// ErrSourceUnreadable is wrapped by every KindSourceUnreadable error.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrTargetUnwritable is wrapped by every KindTargetUnwritable error.
	ErrTargetUnwritable = errors.New("target unwritable")
	// ErrRootNotRegistered is wrapped by every KindRootNotRegistered error.
	ErrRootNotRegistered = errors.New("directory is not a registered root")
	// ErrEmptySource is returned when a source argument is the empty string.
	ErrEmptySource = errors.New("empty source path")
	// ErrInvalidLevel is returned for a compression level flate does not support.
	ErrInvalidLevel = errors.New("invalid compression level")
	// ErrManifestMismatch is returned by Verify when an archive differs from its manifest.
	ErrManifestMismatch = errors.New("archive does not match manifest")
)

type (
	// ErrorKind distinguishes configuration mistakes from I/O failures.
	ErrorKind int

	// Error is returned by Build for every failure tied to a path.
	// It matches both its kind's sentinel and the underlying cause with errors.Is.
	Error struct {
		Kind ErrorKind
		Path string
		Err  error
	}
)

// String returns the human-readable kind name.
func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindSourceNotFound:
		return ErrSourceNotFound
	case KindSourceUnreadable:
		return ErrSourceUnreadable
	case KindTargetUnwritable:
		return ErrTargetUnwritable
	case KindRootNotRegistered:
		return ErrRootNotRegistered
	default:
		return nil
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	var errs []error
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// sourceError classifies a failure to open or stat a source file.
func sourceError(path string, err error) *Error {
	if errors.Is(err, fs.ErrNotExist) {
		return &Error{Kind: KindSourceNotFound, Path: path, Err: err}
	}
	return &Error{Kind: KindSourceUnreadable, Path: path, Err: err}
}

func targetError(path string, err error) *Error {
	return &Error{Kind: KindTargetUnwritable, Path: path, Err: err}
}
