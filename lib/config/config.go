// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "GVARIANT_CONFIG"

// Config is the configuration of the gvariant command.
type Config struct {
	// Encode configures the encode command.
	Encode EncodeConfig `yaml:"encode"`

	// Decode configures the decode command.
	Decode DecodeConfig `yaml:"decode"`

	// Format configures the format command.
	Format FormatConfig `yaml:"format"`

	// Log configures diagnostic output.
	Log LogConfig `yaml:"log"`
}

// EncodeConfig configures the encode command.
type EncodeConfig struct {
	// From is the input format: "json" or "yaml".
	// Default: json
	From string `yaml:"from"`

	// Type is the default expected type signature. Empty infers.
	Type string `yaml:"type"`

	// HumanReadable encodes structs as dictionaries and enums by name.
	// Default: true
	HumanReadable bool `yaml:"human_readable"`

	// Binary writes a framed binary value instead of text.
	Binary bool `yaml:"binary"`

	// Compression is the frame compression: "none", "lz4", "zstd" or
	// "auto".
	// Default: auto
	Compression string `yaml:"compression"`
}

// DecodeConfig configures the decode command.
type DecodeConfig struct {
	// To is the output format: "json", "yaml" or "cbor" (diagnostic
	// notation).
	// Default: json
	To string `yaml:"to"`

	// Indent pretty-prints JSON output.
	// Default: true
	Indent bool `yaml:"indent"`
}

// FormatConfig configures the format command.
type FormatConfig struct {
	// Annotate prints the type annotations needed to parse the output
	// back to the same type.
	// Default: true
	Annotate bool `yaml:"annotate"`
}

// LogConfig configures diagnostic output.
type LogConfig struct {
	// Level is the minimum level: "debug", "info", "warn" or "error".
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration. It is the base that a
// config file is merged into.
func Default() *Config {
	return &Config{
		Encode: EncodeConfig{
			From:          "json",
			HumanReadable: true,
			Compression:   "auto",
		},
		Decode: DecodeConfig{
			To:     "json",
			Indent: true,
		},
		Format: FormatConfig{
			Annotate: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the GVARIANT_CONFIG environment
// variable. It fails if the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your gvariant.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merged over
// [Default], and validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the file at explicitPath when it is set, then the file
// named by GVARIANT_CONFIG, and returns [Default] when neither is set.
func Resolve(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return LoadFile(explicitPath)
	}
	if os.Getenv(EnvVar) != "" {
		return Load()
	}
	return Default(), nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// An empty file decodes to io.EOF and leaves the defaults.
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]string{"json", "yaml"}, c.Encode.From) {
		errs = append(errs, fmt.Errorf("encode.from must be one of: json, yaml (got %q)", c.Encode.From))
	}
	if !slices.Contains([]string{"none", "lz4", "zstd", "auto"}, c.Encode.Compression) {
		errs = append(errs, fmt.Errorf("encode.compression must be one of: none, lz4, zstd, auto (got %q)", c.Encode.Compression))
	}
	if !slices.Contains([]string{"json", "yaml", "cbor"}, c.Decode.To) {
		errs = append(errs, fmt.Errorf("decode.to must be one of: json, yaml, cbor (got %q)", c.Decode.To))
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error (got %q)", c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
