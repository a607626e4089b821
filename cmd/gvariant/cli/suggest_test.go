// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"ab", "abc", 1},
		{"abc", "bac", 2},
		{"kitten", "sitting", 3},
		{"encode", "encdoe", 2},
		{"digest", "digst", 1},
	}

	for _, test := range tests {
		t.Run(test.a+"/"+test.b, func(t *testing.T) {
			if got := levenshtein(test.a, test.b); got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
			if reverse := levenshtein(test.b, test.a); reverse != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.b, test.a, reverse, test.want)
			}
		})
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{{Name: "encode"}, {Name: "decode"}, {Name: "format"}, {Name: "type"}, {Name: "digest"}}

	tests := []struct {
		input string
		want  string
	}{
		{"encod", "encode"},
		{"fromat", "format"},
		{"typ", "type"},
		{"completely-different", ""},
	}
	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	newFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("encode", pflag.ContinueOnError)
		flagSet.StringP("type", "t", "", "")
		flagSet.Bool("binary", false, "")
		flagSet.String("compress", "", "")
		return flagSet
	}

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--tyep", "s"}, "--type"},
		{[]string{"--type", "s", "--compres=lz4"}, "--compress"},
		{[]string{"-t", "s", "--binery"}, "--binary"},
		{[]string{"--unrelated-flag"}, ""},
		{[]string{"--", "--tyep"}, ""},
	}
	for _, test := range tests {
		if got := suggestFlag(test.args, newFlagSet()); got != test.want {
			t.Errorf("suggestFlag(%q) = %q, want %q", test.args, got, test.want)
		}
	}
}
