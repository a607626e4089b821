// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/gvariant/cmd/gvariant/cli"
	"github.com/bureau-foundation/gvariant/lib/codec"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

type decodeParams struct {
	Global  globalFlags
	To      string `flag:"to,o"      desc:"output format: json, yaml or cbor (diagnostic notation)" default:"json"`
	Type    string `flag:"type,t"    desc:"type to read text input as (default: inferred)"`
	Hex     bool   `flag:"hex,x"     desc:"treat input as a hex-encoded binary frame"`
	Compact bool   `flag:"compact,c" desc:"compact JSON output (no indentation)"`
}

func decodeCommand(std streams) *cli.Command {
	var params decodeParams

	command := &cli.Command{
		Name:    "decode",
		Summary: "Convert a GVariant value to JSON, YAML or CBOR",
		Description: `Read a value in text form or a binary frame (detected by its magic
bytes) and write it as JSON, YAML or CBOR diagnostic notation.

Dictionaries keep their order. Boxed values appear as their contents,
except in CBOR, where they carry tag 26486. Byte strings are base64 in
JSON and YAML. Maybe values are null or their contents.`,
		Usage: "gvariant decode [flags] [file]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("decode", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Decode a text value to JSON",
				Command:     `echo "{'port': <uint16 80>}" | gvariant decode`,
			},
			{
				Description: "Inspect a frame as CBOR diagnostic notation",
				Command:     "gvariant decode --to cbor values.gvb",
			},
		},
	}
	command.Run = func(args []string) error {
		cfg, logger, err := params.Global.resolve("decode")
		if err != nil {
			return err
		}
		to, indent := params.To, !params.Compact
		if !command.Changed("to") {
			to = cfg.Decode.To
		}
		if !command.Changed("compact") {
			indent = cfg.Decode.Indent
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
		logger.Debug("decoded value", "type", value.Type().String(), "format", to)
		return writeDecoded(std.out, value, to, indent)
	}
	return command
}

// writeDecoded writes value to w in the named format.
func writeDecoded(w io.Writer, value variant.Value, to string, indent bool) error {
	dynamic := codec.NewAny(value)

	var output []byte
	switch to {
	case "json":
		encoded, err := dynamic.MarshalJSON()
		if err != nil {
			return cli.Validation("encode JSON: %w", err)
		}
		if indent {
			var indented bytes.Buffer
			if err := json.Indent(&indented, encoded, "", "  "); err != nil {
				return cli.Internal("indent JSON: %w", err)
			}
			encoded = indented.Bytes()
		}
		output = append(encoded, '\n')
	case "yaml":
		encoded, err := yaml.Marshal(dynamic)
		if err != nil {
			return cli.Validation("encode YAML: %w", err)
		}
		output = encoded
	case "cbor":
		encoded, err := codec.EncodeCBOR(dynamic)
		if err != nil {
			return cli.Validation("encode CBOR: %w", err)
		}
		diagnostic, err := codec.DiagnoseCBOR(encoded)
		if err != nil {
			return cli.Internal("diagnose CBOR: %w", err)
		}
		output = []byte(diagnostic + "\n")
	default:
		return cli.Validation("--to must be json, yaml or cbor, got %q", to)
	}

	_, err := w.Write(output)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
