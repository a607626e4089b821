// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"slices"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

type sharedFlags struct {
	Config string
}

func (s *sharedFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&s.Config, "config", "", "config file")
}

type embeddedParams struct {
	Verbose bool `flag:"verbose,v" desc:"debug logging"`
}

type testParams struct {
	embeddedParams
	Shared    sharedFlags
	Type      string   `flag:"type,t" desc:"expected type" default:"v"`
	Binary    bool     `flag:"binary" desc:"binary output" default:"true"`
	Depth     int      `flag:"depth" desc:"depth" default:"3"`
	Formats   []string `flag:"formats" desc:"formats" default:"json,yaml"`
	untracked string
}

func TestBindFlags_Defaults(t *testing.T) {
	var params testParams
	flagSet := FlagsFromParams("test", &params)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if params.Type != "v" {
		t.Errorf("Type = %q, want %q", params.Type, "v")
	}
	if !params.Binary {
		t.Error("Binary = false, want true")
	}
	if params.Depth != 3 {
		t.Errorf("Depth = %d, want 3", params.Depth)
	}
	if !slices.Equal(params.Formats, []string{"json", "yaml"}) {
		t.Errorf("Formats = %v, want [json yaml]", params.Formats)
	}
	if flagSet.Lookup("untracked") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlags_Parse(t *testing.T) {
	var params testParams
	flagSet := FlagsFromParams("test", &params)
	err := flagSet.Parse([]string{"-t", "a{sv}", "--binary=false", "-v", "--config", "c.yaml", "--depth", "7"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if params.Type != "a{sv}" {
		t.Errorf("Type = %q, want %q", params.Type, "a{sv}")
	}
	if params.Binary {
		t.Error("Binary = true, want false")
	}
	if !params.Verbose {
		t.Error("Verbose = false, want true")
	}
	if params.Shared.Config != "c.yaml" {
		t.Errorf("Shared.Config = %q, want %q", params.Shared.Config, "c.yaml")
	}
	if params.Depth != 7 {
		t.Errorf("Depth = %d, want 7", params.Depth)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	if err := BindFlags(testParams{}, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags(non-pointer) succeeded")
	}

	var unsupported struct {
		Ratio float64 `flag:"ratio"`
	}
	err := BindFlags(&unsupported, pflag.NewFlagSet("x", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "unsupported type float64") {
		t.Errorf("BindFlags(float64 field) = %v, want unsupported type error", err)
	}

	var badDefault struct {
		On bool `flag:"on" default:"maybe"`
	}
	if err := BindFlags(&badDefault, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags(bad bool default) succeeded")
	}
}
