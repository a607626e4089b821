// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the gvariant
// tool.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory and a Run
// function. Commands are assembled into a tree by the commands package
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (distance <= 3).
//
// Flags are declared as tagged struct fields and bound with
// [FlagsFromParams]. Errors returned by commands carry a
// [ErrorCategory] through [ToolError] so that scripts can tell bad
// input from internal failures by exit code.
package cli
