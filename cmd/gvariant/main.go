// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/gvariant/cmd/gvariant/cli"
	"github.com/bureau-foundation/gvariant/cmd/gvariant/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own verdict (like type --subtype-of)
		// return an ExitError. Don't print a redundant "error:" line.
		if _, ok := err.(*cli.ExitError); !ok {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(cli.ExitCodeOf(err))
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
