// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"

	"github.com/bureau-foundation/gvariant/lib/signature"
)

// Option configures a single conversion. Options are per call; there
// is no package-level state, so concurrent conversions with different
// options never interfere.
type Option func(*options)

type options struct {
	expected      signature.Type
	humanReadable bool
	hostOrder     binary.ByteOrder
}

func newOptions(opts []Option) options {
	configured := options{hostOrder: hostByteOrder}
	for _, option := range opts {
		option(&configured)
	}
	return configured
}

// WithType sets the expected type. The produced value must be a
// subtype of it; the exact type "v" boxes the result instead.
func WithType(expected signature.Type) Option {
	return func(o *options) { o.expected = expected }
}

// HumanReadable selects the human-readable representation of structs
// (string-keyed dictionaries instead of positional tuples) and enums
// (names instead of indices). Text transports such as JSON and YAML
// set it; binary transports do not.
func HumanReadable(enabled bool) Option {
	return func(o *options) { o.humanReadable = enabled }
}

// WithByteOrder overrides the native byte order assumed by the
// binary envelope. Only tests that simulate a host of the other
// endianness need it.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) { o.hostOrder = order }
}
