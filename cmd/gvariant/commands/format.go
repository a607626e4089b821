// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gvariant/cmd/gvariant/cli"
)

type formatParams struct {
	Global     globalFlags
	Type       string `flag:"type,t"      desc:"type to read the text as (default: inferred)"`
	NoAnnotate bool   `flag:"no-annotate" desc:"omit the type annotations needed to read the output back"`
	Hex        bool   `flag:"hex,x"       desc:"treat input as a hex-encoded binary frame"`
}

func formatCommand(std streams) *cli.Command {
	var params formatParams

	command := &cli.Command{
		Name:    "format",
		Summary: "Print a value in canonical text form",
		Description: `Read a value in text form or a binary frame and print it in canonical
text form: single-quoted strings, "@" annotations where the literals
alone would not reproduce the type, and type keywords such as "uint32"
on numbers that are not int32 or double.

With --no-annotate annotations are left out. The result is easier to
read but may parse back to a different type.`,
		Usage: "gvariant format [flags] [file]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("format", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Normalize hand-written text",
				Command:     `echo '[ 1,2 , 3 ]' | gvariant format`,
			},
			{
				Description: "Read a frame as text",
				Command:     "gvariant format values.gvb",
			},
		},
	}
	command.Run = func(args []string) error {
		cfg, logger, err := params.Global.resolve("format")
		if err != nil {
			return err
		}
		annotate := cfg.Format.Annotate
		if command.Changed("no-annotate") {
			annotate = !params.NoAnnotate
		}
		expected, err := parseType("type", params.Type)
		if err != nil {
			return err
		}

		data, err := readInput(args, std.in)
		if err != nil {
			return err
		}
		value, err := loadValue(data, params.Hex, expected)
		if err != nil {
			return err
		}
		logger.Debug("formatting value", "type", value.Type().String(), "annotate", annotate)
		_, err = fmt.Fprintln(std.out, value.Print(annotate))
		return err
	}
	return command
}
