// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "gvariant.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Encode.From != "json" {
		t.Errorf("expected encode.from=json, got %s", cfg.Encode.From)
	}
	if cfg.Encode.Compression != "auto" {
		t.Errorf("expected encode.compression=auto, got %s", cfg.Encode.Compression)
	}
	if !cfg.Encode.HumanReadable {
		t.Error("expected encode.human_readable=true")
	}
	if !cfg.Format.Annotate {
		t.Error("expected format.annotate=true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestLoad_RequiresConfigVariable(t *testing.T) {
	// Save and restore GVARIANT_CONFIG.
	origConfig, had := os.LookupEnv(EnvVar)
	defer func() {
		if had {
			os.Setenv(EnvVar, origConfig)
		} else {
			os.Unsetenv(EnvVar)
		}
	}()

	os.Unsetenv(EnvVar)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when GVARIANT_CONFIG not set, got nil")
	}
	expectedMsg := "GVARIANT_CONFIG environment variable not set"
	if !strings.HasPrefix(err.Error(), expectedMsg) {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\") failed: %v", err)
	}
	if cfg.Decode.To != "json" {
		t.Errorf("Resolve(\"\") decode.to = %s, want the default json", cfg.Decode.To)
	}
}

func TestLoad_WithConfigVariable(t *testing.T) {
	t.Setenv(EnvVar, writeConfig(t, `
decode:
  to: yaml
`))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Decode.To != "yaml" {
		t.Errorf("expected decode.to=yaml, got %s", cfg.Decode.To)
	}

	resolved, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\") failed: %v", err)
	}
	if resolved.Decode.To != "yaml" {
		t.Errorf("Resolve(\"\") decode.to = %s, want yaml from GVARIANT_CONFIG", resolved.Decode.To)
	}

	explicit, err := Resolve(writeConfig(t, "decode:\n  to: cbor\n"))
	if err != nil {
		t.Fatalf("Resolve(explicit) failed: %v", err)
	}
	if explicit.Decode.To != "cbor" {
		t.Errorf("Resolve(explicit) decode.to = %s, want cbor", explicit.Decode.To)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
encode:
  from: yaml
  type: a{sv}
  human_readable: false
  binary: true
  compression: zstd

format:
  annotate: false

log:
  level: debug
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Encode.From != "yaml" {
		t.Errorf("expected encode.from=yaml, got %s", cfg.Encode.From)
	}
	if cfg.Encode.Type != "a{sv}" {
		t.Errorf("expected encode.type=a{sv}, got %s", cfg.Encode.Type)
	}
	if cfg.Encode.HumanReadable {
		t.Error("expected encode.human_readable=false")
	}
	if !cfg.Encode.Binary {
		t.Error("expected encode.binary=true")
	}
	if cfg.Encode.Compression != "zstd" {
		t.Errorf("expected encode.compression=zstd, got %s", cfg.Encode.Compression)
	}
	if cfg.Format.Annotate {
		t.Error("expected format.annotate=false")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log.level=debug, got %s", cfg.Log.Level)
	}
	// Unset sections keep their defaults.
	if cfg.Decode.To != "json" || !cfg.Decode.Indent {
		t.Errorf("expected default decode section, got %+v", cfg.Decode)
	}
}

func TestLoadFile_Empty(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadFile(empty) failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("LoadFile(empty) = %+v, want defaults", cfg)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "encode:\n  color: red\n", "field color not found"},
		{"bad compression", "encode:\n  compression: gzip\n", "encode.compression"},
		{"bad output", "decode:\n  to: xml\n", "decode.to"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, test.content))
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), test.want)
			}
		})
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) should fail")
	}
}

func TestValidate_Collects(t *testing.T) {
	cfg := Default()
	cfg.Encode.From = "toml"
	cfg.Log.Level = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}
	for _, want := range []string{"encode.from", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %q, want it to mention %q", err.Error(), want)
		}
	}
}
