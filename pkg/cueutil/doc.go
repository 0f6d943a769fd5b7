// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and
// turns CUE errors into path-qualified messages.
//
// # Usage
//
//	//go:embed config_schema.cue
//	var schema string
//
//	values, err := cueutil.DecodeMap(schema, "#Config", data, cueutil.WithFilename("zipbundle.cue"))
//	if err != nil {
//	    return err // e.g. "zipbundle.cue: registry[1].root: conflicting values ..."
//	}
package cueutil
