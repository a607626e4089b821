// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"io"
	"os"

	"github.com/bureau-foundation/gvariant/cmd/gvariant/cli"
)

// streams are the standard streams of one command invocation.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// Root builds the gvariant command tree on the process's standard
// streams.
func Root() *cli.Command {
	return newRoot(streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
}

func newRoot(std streams) *cli.Command {
	return &cli.Command{
		Name: "gvariant",
		Description: `gvariant: convert between JSON or YAML and GVariant values.

Values are written in the GVariant text format (the format of
"gdbus call" and GSettings), or as self-describing binary frames that
carry the type signature and an optionally compressed little-endian
serialization.`,
		Output: std.err,
		Subcommands: []*cli.Command{
			encodeCommand(std),
			decodeCommand(std),
			formatCommand(std),
			typeCommand(std),
			digestCommand(std),
		},
		Examples: []cli.Example{
			{
				Description: "Encode a JSON object as an a{sv} dictionary",
				Command:     `echo '{"name": "disk", "size": 512}' | gvariant encode --type 'a{sv}'`,
			},
			{
				Description: "Write a compressed binary frame and read it back",
				Command:     "gvariant encode --binary settings.json > settings.gvb && gvariant decode settings.gvb",
			},
			{
				Description: "Check that a type matches a pattern",
				Command:     "gvariant type --subtype-of 'a{s*}' 'a{sv}'",
			},
		},
	}
}
