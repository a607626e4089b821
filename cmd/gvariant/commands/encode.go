// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/gvariant/cmd/gvariant/cli"
	"github.com/bureau-foundation/gvariant/lib/codec"
	"github.com/bureau-foundation/gvariant/lib/compress"
	"github.com/bureau-foundation/gvariant/lib/config"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

type encodeParams struct {
	Global   globalFlags
	Type     string `flag:"type,t"   desc:"expected type signature (default: inferred)"`
	From     string `flag:"from,f"   desc:"input format: json or yaml" default:"json"`
	Human    bool   `flag:"human"    desc:"encode structs as dictionaries and enums by name" default:"true"`
	Binary   bool   `flag:"binary,b" desc:"write a binary frame instead of text"`
	Compress string `flag:"compress" desc:"frame compression: none, lz4, zstd or auto" default:"auto"`
	Hex      bool   `flag:"hex,x"    desc:"write the binary frame as hex"`
}

// encodeOptions are the resolved settings of one encode.
type encodeOptions struct {
	typeText string
	from     string
	human    bool
	binary   bool
	compress string
	hex      bool
}

func encodeCommand(std streams) *cli.Command {
	var params encodeParams

	command := &cli.Command{
		Name:    "encode",
		Summary: "Convert JSON or YAML to a GVariant value",
		Description: `Read a JSON (comments and trailing commas allowed) or YAML document
and write the equivalent GVariant value.

Without --type the narrowest type is inferred: integers become int64,
homogeneous arrays become arrays, mixed arrays become tuples and
objects become dictionaries (a{sv} when the values differ in type).
With --type the document must fit the given type and numbers take its
numeric widths; a "v" anywhere in the type boxes whatever is found
there.

The output is the annotated text form, which parses back to the same
type, or with --binary a frame holding the signature and compressed
little-endian serialization.`,
		Usage: "gvariant encode [flags] [file]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("encode", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Infer a type",
				Command:     `echo '[1, 2, 3]' | gvariant encode`,
			},
			{
				Description: "Encode against an explicit type",
				Command:     `echo '{"port": 80, "tls": true}' | gvariant encode --type 'a{sv}'`,
			},
			{
				Description: "Write a zstd-compressed frame from YAML",
				Command:     "gvariant encode --from yaml --binary --compress zstd values.yaml > values.gvb",
			},
		},
	}
	command.Run = func(args []string) error {
		cfg, logger, err := params.Global.resolve("encode")
		if err != nil {
			return err
		}
		options := params.merge(command, cfg)
		expected, err := parseType("type", options.typeText)
		if err != nil {
			return err
		}
		data, err := readInput(args, std.in)
		if err != nil {
			return err
		}

		opts := []codec.Option{codec.HumanReadable(options.human)}
		if !expected.IsZero() {
			opts = append(opts, codec.WithType(expected))
		}
		value, err := encodeDocument(data, options.from, opts...)
		if err != nil {
			return err
		}
		logger.Debug("encoded value", "type", value.Type().String(), "input_bytes", len(data))
		return writeEncoded(std.out, value, options, logger)
	}
	return command
}

// merge applies the configuration to every flag not given on the
// command line.
func (p *encodeParams) merge(command *cli.Command, cfg *config.Config) encodeOptions {
	options := encodeOptions{typeText: p.Type, from: p.From, human: p.Human, binary: p.Binary, compress: p.Compress, hex: p.Hex}
	if !command.Changed("type") {
		options.typeText = cfg.Encode.Type
	}
	if !command.Changed("from") {
		options.from = cfg.Encode.From
	}
	if !command.Changed("human") {
		options.human = cfg.Encode.HumanReadable
	}
	if !command.Changed("binary") {
		options.binary = cfg.Encode.Binary
	}
	if !command.Changed("compress") {
		options.compress = cfg.Encode.Compression
	}
	if options.hex {
		options.binary = true
	}
	return options
}

// encodeDocument parses a JSON or YAML document and encodes it.
func encodeDocument(data []byte, from string, opts ...codec.Option) (variant.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return variant.Value{}, cli.Validation("empty input: expected a %s document", from)
	}

	var tree any
	var err error
	switch from {
	case "json":
		tree, err = codec.ParseJSON(jsonc.ToJSON(data))
	case "yaml":
		tree, err = codec.ParseYAML(data)
	default:
		return variant.Value{}, cli.Validation("--from must be json or yaml, got %q", from)
	}
	if err != nil {
		return variant.Value{}, cli.Validation("%w", err)
	}

	value, err := codec.Marshal(tree, opts...)
	if err != nil {
		return variant.Value{}, cli.Validation("encode: %w", err)
	}
	return value, nil
}

func writeEncoded(w io.Writer, value variant.Value, options encodeOptions, logger *slog.Logger) error {
	if !options.binary {
		_, err := fmt.Fprintln(w, value.Print(true))
		return err
	}

	tag, err := frameTag(value, options.compress)
	if err != nil {
		return err
	}
	var frame bytes.Buffer
	if err := codec.WriteFrame(&frame, value, tag); err != nil {
		return cli.Internal("%w", err)
	}
	logger.Debug("wrote frame", "compression", tag.String(), "frame_bytes", frame.Len())

	if options.hex {
		_, err = fmt.Fprintln(w, hex.EncodeToString(frame.Bytes()))
		return err
	}
	_, err = w.Write(frame.Bytes())
	return err
}

// frameTag resolves a compression name. "auto" picks a tag from the
// compressibility of the serialized value.
func frameTag(value variant.Value, name string) (compress.Tag, error) {
	if name == "auto" {
		return compress.Select(value.Serialize(binary.LittleEndian)), nil
	}
	tag, err := compress.ParseTag(name)
	if err != nil {
		return compress.None, cli.Validation("--compress: %w", err)
	}
	return tag, nil
}
