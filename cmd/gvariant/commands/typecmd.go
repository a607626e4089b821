// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gvariant/cmd/gvariant/cli"
	"github.com/bureau-foundation/gvariant/lib/signature"
)

type typeParams struct {
	cli.JSONOutput
	Global    globalFlags
	SubtypeOf string `flag:"subtype-of,s" desc:"pattern to test the type against; exit status 1 when it does not match"`
}

// typeReport describes a type signature.
type typeReport struct {
	Signature string   `json:"signature"`
	Kind      string   `json:"kind"`
	Definite  bool     `json:"definite"`
	Alignment int      `json:"alignment,omitempty"`
	FixedSize int      `json:"fixed_size,omitempty"`
	Element   string   `json:"element,omitempty"`
	Key       string   `json:"key,omitempty"`
	Value     string   `json:"value,omitempty"`
	Items     []string `json:"items,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	SubtypeOf *bool    `json:"subtype_of,omitempty"`
}

func typeCommand(std streams) *cli.Command {
	var params typeParams

	command := &cli.Command{
		Name:    "type",
		Summary: "Describe a type signature",
		Description: `Parse a type signature and describe its shape: kind, member types and,
for definite types, the alignment and fixed size of its binary form.

Signatures are built from the basic codes b y n q i u x t h d s o g,
the boxed type v, the containers m<T> (maybe), a<T> (array),
(<T>...) (tuple) and {<K><V>} (dict entry, in arrays only, with a
basic key), and the patterns * (any type), ? (any basic type) and r
(any tuple).

With --subtype-of the command also reports whether every value of the
type is a value of the pattern, and exits with status 1 when it is not.`,
		Usage: "gvariant type [flags] SIGNATURE",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("type", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Describe a vardict",
				Command:     "gvariant type 'a{sv}'",
			},
			{
				Description: "Test a type against a pattern",
				Command:     "gvariant type --subtype-of 'a{?*}' 'a{uas}'",
			},
		},
	}
	command.Run = func(args []string) error {
		if _, _, err := params.Global.resolve("type"); err != nil {
			return err
		}
		if len(args) != 1 {
			return cli.Validation("type takes exactly one signature argument, got %d", len(args))
		}
		parsed, err := parseType("signature", args[0])
		if err != nil {
			return err
		}
		pattern, err := parseType("subtype-of", params.SubtypeOf)
		if err != nil {
			return err
		}

		report := describeType(parsed)
		if !pattern.IsZero() {
			matches := parsed.IsSubtypeOf(pattern)
			report.Pattern = pattern.String()
			report.SubtypeOf = &matches
		}

		if done, err := params.EmitJSON(std.out, report); done {
			if err != nil {
				return err
			}
		} else if err := writeTypeReport(std.out, report); err != nil {
			return err
		}
		if report.SubtypeOf != nil && !*report.SubtypeOf {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}
	return command
}

func describeType(t signature.Type) typeReport {
	report := typeReport{
		Signature: t.String(),
		Kind:      typeKind(t),
		Definite:  t.IsDefinite(),
	}
	if report.Definite {
		report.Alignment = t.Alignment()
		report.FixedSize = t.FixedSize()
	}
	if element, err := t.Element(); err == nil {
		report.Element = element.String()
	}
	if t.IsDictEntry() {
		key, _ := t.Key()
		value, _ := t.Value()
		report.Key, report.Value = key.String(), value.String()
	}
	if t.IsTuple() {
		if items, err := t.Items(); err == nil {
			for _, item := range items {
				report.Items = append(report.Items, item.String())
			}
		}
	}
	return report
}

func typeKind(t signature.Type) string {
	switch {
	case t.String() == "*":
		return "any"
	case t.String() == "?":
		return "any basic"
	case t.String() == "r":
		return "any tuple"
	case t.IsBasic():
		return "basic"
	case t.IsVariant():
		return "variant"
	case t.IsMaybe():
		return "maybe"
	case t.IsDictionary():
		return "dictionary"
	case t.IsArray():
		return "array"
	case t.IsDictEntry():
		return "dict entry"
	case t.IsTuple():
		return "tuple"
	}
	return "unknown"
}

func writeTypeReport(w io.Writer, report typeReport) error {
	var out strings.Builder
	fmt.Fprintf(&out, "signature:  %s\n", report.Signature)
	fmt.Fprintf(&out, "kind:       %s\n", report.Kind)
	fmt.Fprintf(&out, "definite:   %t\n", report.Definite)
	if report.Definite {
		fmt.Fprintf(&out, "alignment:  %d\n", report.Alignment)
		if report.FixedSize > 0 {
			fmt.Fprintf(&out, "fixed size: %d\n", report.FixedSize)
		} else {
			fmt.Fprintf(&out, "fixed size: variable\n")
		}
	}
	if report.Element != "" {
		fmt.Fprintf(&out, "element:    %s\n", report.Element)
	}
	if report.Key != "" {
		fmt.Fprintf(&out, "key:        %s\n", report.Key)
		fmt.Fprintf(&out, "value:      %s\n", report.Value)
	}
	if report.Items != nil {
		fmt.Fprintf(&out, "items:      %s\n", strings.Join(report.Items, " "))
	}
	if report.SubtypeOf != nil {
		fmt.Fprintf(&out, "subtype of %s: %t\n", report.Pattern, *report.SubtypeOf)
	}
	_, err := io.WriteString(w, out.String())
	return err
}
