// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the gvariant command tree.
//
// Every leaf command embeds [globalFlags] for --config and --verbose,
// resolves a [config.Config] on entry and lets it supply every flag the
// user did not give. Commands read one input from a file argument or
// stdin and write one result to stdout; diagnostics go to a structured
// logger on stderr.
package commands
