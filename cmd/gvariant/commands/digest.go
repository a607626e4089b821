// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gvariant/cmd/gvariant/cli"
	"github.com/bureau-foundation/gvariant/lib/codec"
)

type digestParams struct {
	cli.JSONOutput
	Global globalFlags
	Type   string `flag:"type,t" desc:"type to read text input as (default: inferred)"`
	Hex    bool   `flag:"hex,x"  desc:"treat input as a hex-encoded binary frame"`
	Verify string `flag:"verify" desc:"expected digest; exit status 1 when the value does not match"`
}

type digestReport struct {
	Digest   string `json:"digest"`
	Type     string `json:"type"`
	Verified *bool  `json:"verified,omitempty"`
}

func digestCommand(std streams) *cli.Command {
	var params digestParams

	command := &cli.Command{
		Name:    "digest",
		Summary: "Fingerprint a value",
		Description: `Print the BLAKE3 fingerprint of a value: a keyed hash of its type
signature and canonical little-endian serialization.

Equal values always share a fingerprint, whatever their text layout,
frame compression or the byte order they were produced in. Values of
different types never do, even when their bytes are the same.`,
		Usage: "gvariant digest [flags] [file]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("digest", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Fingerprint a frame",
				Command:     "gvariant digest values.gvb",
			},
			{
				Description: "Check a value against a known digest",
				Command:     "gvariant digest --verify 9f2c... values.txt",
			},
		},
	}
	command.Run = func(args []string) error {
		_, logger, err := params.Global.resolve("digest")
		if err != nil {
			return err
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

		digest := codec.Fingerprint(value)
		report := digestReport{Digest: digest.String(), Type: value.Type().String()}
		if params.Verify != "" {
			want, err := codec.ParseDigest(params.Verify)
			if err != nil {
				return cli.Validation("--verify: %w", err)
			}
			verified := want == digest
			report.Verified = &verified
		}
		logger.Debug("fingerprinted value", "type", report.Type, "digest", report.Digest)

		if done, err := params.EmitJSON(std.out, report); done {
			if err != nil {
				return err
			}
		} else if report.Verified != nil {
			verdict := "OK"
			if !*report.Verified {
				verdict = "MISMATCH"
			}
			if _, err := fmt.Fprintf(std.out, "%s  %s\n", report.Digest, verdict); err != nil {
				return err
			}
		} else if _, err := fmt.Fprintf(std.out, "%s  %s\n", report.Digest, report.Type); err != nil {
			return err
		}
		if report.Verified != nil && !*report.Verified {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}
	return command
}
