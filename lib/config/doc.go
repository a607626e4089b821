// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the gvariant
// command.
//
// Configuration is loaded from a single file specified by either the
// GVARIANT_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search; [Resolve] returns [Default] when neither is given.
//
// The file supplies defaults for command flags. A flag given on the
// command line always overrides the file.
//
// Key exports:
//
//   - [Config] -- master struct with Encode, Decode, Format and Log
//   - [Default] -- returns a Config with built-in defaults
//   - [Load], [LoadFile] and [Resolve] -- the entry points for loading
//
// This package depends on no other gvariant packages.
package config
