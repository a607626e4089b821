// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode"

	"github.com/bureau-foundation/gvariant/cmd/gvariant/cli"
	"github.com/bureau-foundation/gvariant/lib/codec"
	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

// readInput reads the file named by the only element of args, or stdin
// when args is empty.
func readInput(args []string, stdin io.Reader) ([]byte, error) {
	switch len(args) {
	case 0:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, cli.Internal("read stdin: %w", err)
		}
		return data, nil
	case 1:
		data, err := os.ReadFile(args[0])
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cli.NotFound("input file %s does not exist", args[0])
		}
		if err != nil {
			return nil, cli.Internal("read %s: %w", args[0], err)
		}
		return data, nil
	}
	return nil, cli.Validation("expected at most one input file, got %d arguments", len(args))
}

// decodeHexInput strips whitespace from hex-encoded input and decodes
// it. Whitespace between digit pairs is allowed ("47 56 42 31").
func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	if len(cleaned) == 0 {
		return nil, cli.Validation("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, cli.Validation("decode hex: %w", err)
	}
	return decoded[:count], nil
}

// loadValue reads a value from a binary frame or from text. Text is
// read as expected when it is set; frames carry their own type, which
// must then be a subtype of expected.
func loadValue(data []byte, hexMode bool, expected signature.Type) (variant.Value, error) {
	if hexMode {
		decoded, err := decodeHexInput(data)
		if err != nil {
			return variant.Value{}, err
		}
		data = decoded
	}

	if codec.IsFrame(data) {
		value, err := codec.ReadFrame(bytes.NewReader(data))
		if err != nil {
			return variant.Value{}, cli.Validation("%w", err)
		}
		if !expected.IsZero() && !value.Type().IsSubtypeOf(expected) {
			return variant.Value{}, cli.Validation("frame holds %s, want %s", value.Type(), expected)
		}
		return value, nil
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return variant.Value{}, cli.Validation("empty input: expected a value in text form or a binary frame")
	}
	value, err := variant.ParseAs(expected, text)
	if err != nil {
		return variant.Value{}, cli.Validation("%w", err)
	}
	return value, nil
}
