// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gvariant/cmd/gvariant/cli"
	"github.com/bureau-foundation/gvariant/lib/config"
	"github.com/bureau-foundation/gvariant/lib/signature"
)

// globalFlags are accepted by every leaf command.
type globalFlags struct {
	ConfigPath string
	Verbose    bool
}

// AddFlags implements [cli.FlagBinder].
func (g *globalFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&g.ConfigPath, "config", "", "configuration file (default $"+config.EnvVar+")")
	flagSet.BoolVarP(&g.Verbose, "verbose", "v", false, "log debug diagnostics to stderr")
}

// resolve loads the configuration and builds the command logger.
func (g *globalFlags) resolve(command string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Resolve(g.ConfigPath)
	if err != nil {
		return nil, nil, cli.Validation("%w", err)
	}
	level, err := cli.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, cli.Validation("%w", err)
	}
	if g.Verbose {
		level = slog.LevelDebug
	}
	return cfg, cli.NewCommandLogger(level).With("command", command), nil
}

// parseType parses an optional signature flag value. The zero Type
// means no expected type.
func parseType(flag, text string) (signature.Type, error) {
	if text == "" {
		return signature.Type{}, nil
	}
	parsed, err := signature.Parse(text)
	if err != nil {
		return signature.Type{}, cli.Validation("--%s: %w", flag, err).
			WithHint("Run 'gvariant type --help' for the signature grammar.")
	}
	return parsed, nil
}
