// SPDX-License-Identifier: MPL-2.0

// Package config loads zipbundle's configuration.
//
// Configuration is written in CUE and validated against an embedded schema,
// then layered by Viper over the built-in defaults. Environment variables
// prefixed with ZIPBUNDLE_ override individual keys; for example
// ZIPBUNDLE_ARCHIVE_STRICT=true enables strict builds.
package config
