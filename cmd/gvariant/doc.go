// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Gvariant converts between JSON or YAML documents and GVariant
// values.
//
// Subcommands:
//
//   - encode: JSON, JSONC or YAML to canonical text or a binary frame.
//   - decode: text or a binary frame to JSON, YAML or CBOR diagnostic
//     notation.
//   - format: reprint text in canonical form.
//   - type: describe a type signature.
//   - digest: fingerprint a value.
//
// Defaults come from the YAML file named by --config or
// GVARIANT_CONFIG; flags override them.
package main
