// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "gvariant",
		Subcommands: []*Command{
			{
				Name: "encode",
				Run: func(args []string) error {
					called = "encode"
					return nil
				},
			},
			{
				Name: "decode",
				Run: func(args []string) error {
					called = "decode"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"decode"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "decode" {
		t.Errorf("dispatched to %q, want %q", called, "decode")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var typeText string
	var receivedArgs []string

	command := &Command{
		Name: "encode",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("encode", pflag.ContinueOnError)
			flagSet.StringVar(&typeText, "type", "", "expected type")
			return flagSet
		},
		Run: func(args []string) error {
			receivedArgs = args
			return nil
		},
	}

	if err := command.Execute([]string{"--type", "a{sv}", "input.json"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if typeText != "a{sv}" {
		t.Errorf("type = %q, want %q", typeText, "a{sv}")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "input.json" {
		t.Errorf("args = %v, want [input.json]", receivedArgs)
	}
	if !command.Changed("type") {
		t.Error("Changed(type) = false, want true")
	}
	if command.Changed("binary") {
		t.Error("Changed(binary) = true, want false")
	}
}

func TestCommand_Execute_UnknownSubcommandSuggests(t *testing.T) {
	root := &Command{
		Name:        "gvariant",
		Subcommands: []*Command{{Name: "encode", Run: func([]string) error { return nil }}},
	}

	err := root.Execute([]string{"encdoe"})
	if err == nil {
		t.Fatal("Execute() succeeded, want error")
	}
	if !strings.Contains(err.Error(), `did you mean "encode"`) {
		t.Errorf("error = %q, want a suggestion of encode", err)
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Errorf("error = %#v, want a validation ToolError", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	var binary bool
	command := &Command{
		Name: "encode",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("encode", pflag.ContinueOnError)
			flagSet.BoolVar(&binary, "binary", false, "write a binary frame")
			return flagSet
		},
		Run: func([]string) error { return nil },
	}

	err := command.Execute([]string{"--binray"})
	if err == nil {
		t.Fatal("Execute() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "did you mean --binary?") {
		t.Errorf("error = %q, want a suggestion of --binary", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "gvariant",
		Output:      &help,
		Subcommands: []*Command{{Name: "encode", Summary: "Encode a value"}},
	}

	if err := root.Execute(nil); err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("Execute(nil) = %v, want subcommand required", err)
	}
	if !strings.Contains(help.String(), "Encode a value") {
		t.Errorf("help output = %q, want the subcommand summary", help.String())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var quiet bool
	root := &Command{Name: "gvariant"}
	command := &Command{
		Name:        "format",
		Description: "Print a value in canonical text form.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("format", pflag.ContinueOnError)
			flagSet.BoolVar(&quiet, "no-annotate", false, "omit type annotations")
			return flagSet
		},
		Examples: []Example{{Description: "Reformat a file", Command: "gvariant format value.txt"}},
		parent:   root,
	}

	var output bytes.Buffer
	command.PrintHelp(&output)
	for _, want := range []string{
		"Print a value in canonical text form.",
		"Usage:\n  gvariant format [flags]",
		"--no-annotate",
		"# Reformat a file",
	} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("help output missing %q:\n%s", want, output.String())
		}
	}
}

func TestCommand_HelpFlag(t *testing.T) {
	var output bytes.Buffer
	ran := false
	command := &Command{
		Name:    "digest",
		Summary: "Fingerprint a value",
		Output:  &output,
		Run: func([]string) error {
			ran = true
			return nil
		},
	}
	if err := command.Execute([]string{"--help"}); err != nil {
		t.Fatalf("Execute(--help) error: %v", err)
	}
	if ran {
		t.Error("--help ran the command")
	}
	if !strings.Contains(output.String(), "Fingerprint a value") {
		t.Errorf("help output = %q", output.String())
	}
}

func TestExitCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"exit error", &ExitError{Code: 3}, 3},
		{"validation", Validation("bad"), 2},
		{"internal", Internal("broken"), 1},
		{"plain", errors.New("plain"), 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExitCodeOf(test.err); got != test.want {
				t.Errorf("ExitCodeOf(%v) = %d, want %d", test.err, got, test.want)
			}
		})
	}
}
