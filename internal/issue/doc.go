// SPDX-License-Identifier: MPL-2.0

// Package issue carries user-facing error context for the zipbundle CLI.
//
// ActionableError wraps a failure with the operation, the resource, and
// remediation hints. The Issue catalog holds longer Markdown guidance keyed
// by Id, rendered for the terminal with glamour.
package issue
