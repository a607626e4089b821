// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec converts between Go values and variant values.
//
// [Marshal] walks a Go value by reflection and builds a
// [variant.Value]. With no expected type it synthesizes the narrowest
// concrete type:
//
//	true                          b
//	[]uint16{1, 2, 3}             aq
//	codec.Tuple{"a", uint64(2)}   (st)
//	map[string]uint64{"x": 1}     a{st}
//	map[string]any{"x": 1, "y": "two"}
//	                              a{sv}, each value boxed
//
// With [WithType] the produced value must be a subtype of the expected
// type, and the exact type "v" boxes whatever is produced. Mixed
// sequences become tuples under inference and boxed arrays ("av")
// under an array expectation.
//
// [Unmarshal] reads a variant value into a Go target. Boxed values are
// unwrapped transparently, integers coerce across every integer width
// and boolean with range checks, and positional reads require exact
// arity.
//
// Structs have two shapes. Machine transports use a positional tuple
// in field order; human-readable transports ([HumanReadable]) use a
// string-keyed dictionary of field names. Field names come from the
// `variant` struct tag:
//
//	type Item struct {
//		ID   uint32 `variant:"id"`
//		Name string `variant:"name"`
//		Note string `variant:"-"`
//	}
//
// # Dynamic values and transports
//
// [Any] wraps a value of unknown type. Its [Any.Interface] method
// projects the value onto the ordered tree types [Map], [Tuple],
// [Entry] and [Boxed], and the Any implements JSON, CBOR, YAML and
// MessagePack (un)marshaling in both directions on top of that tree.
// Decoding a transport into an Any runs the same inference as Marshal,
// so encode and decode agree on every shape.
//
// [Serialized] and [Pretty] are the binary and text envelopes of a
// value. The binary payload is always little-endian; a big-endian host
// byteswaps on both sides. [Variant] picks the envelope per transport:
// text for JSON and YAML, binary for CBOR and MessagePack.
//
// Envelopes trust their input. Deserializing checks framing bounds but
// performs no further structural validation, and nothing bounds the
// nesting depth of a value. Services that accept variant data from
// untrusted peers impose their own size and depth limits before
// decoding.
package codec
