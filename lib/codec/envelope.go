// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

// Serialized is the binary envelope of a value: its type signature
// and its serialization in little-endian byte order.
//
// The pair is trusted. [Serialized.Value] checks framing bounds but
// does not validate normal form; callers receiving envelopes from an
// untrusted peer validate upstream.
type Serialized struct {
	_ struct{} `cbor:",toarray"`

	Signature signature.Type `json:"signature" yaml:"signature"`
	Data      []byte         `json:"data" yaml:"data"`
}

// NewSerialized serializes value. The payload is produced in host
// byte order and byteswapped on a big-endian host, so it is always
// little-endian. [WithByteOrder] overrides the host order.
func NewSerialized(value variant.Value, opts ...Option) Serialized {
	host := newOptions(opts).hostOrder
	if host == binary.BigEndian {
		value = value.Byteswap()
	}
	return Serialized{Signature: value.Type(), Data: value.Serialize(host)}
}

// Value deserializes the envelope, reading the payload in host byte
// order and byteswapping on a big-endian host.
func (s Serialized) Value(opts ...Option) (variant.Value, error) {
	if !s.Signature.IsDefinite() {
		return variant.Value{}, &MismatchError{Actual: s.Signature.String(), Expected: "definite type"}
	}
	host := newOptions(opts).hostOrder
	value, err := variant.Deserialize(s.Signature, s.Data, host)
	if err != nil {
		return variant.Value{}, fmt.Errorf("deserializing %s: %w", s.Signature, err)
	}
	if host == binary.BigEndian {
		value = value.Byteswap()
	}
	return value, nil
}

// MarshalVariant implements [Marshaler].
func (s Serialized) MarshalVariant(*Encoder) (variant.Value, error) {
	return s.Value()
}

// UnmarshalVariant implements [Unmarshaler]. Boxed values are
// unwrapped first.
func (s *Serialized) UnmarshalVariant(value variant.Value) error {
	*s = NewSerialized(unboxAll(value))
	return nil
}

// Pretty is the text envelope of a value: its annotated canonical text
// form, which parses back to an equal value of the same type.
type Pretty string

// NewPretty renders value.
func NewPretty(value variant.Value) Pretty {
	return Pretty(value.Print(true))
}

// Value parses the envelope.
func (p Pretty) Value() (variant.Value, error) {
	return variant.Parse(string(p))
}

// MarshalVariant implements [Marshaler].
func (p Pretty) MarshalVariant(*Encoder) (variant.Value, error) {
	return p.Value()
}

// UnmarshalVariant implements [Unmarshaler]. Boxed values are
// unwrapped first.
func (p *Pretty) UnmarshalVariant(value variant.Value) error {
	*p = NewPretty(unboxAll(value))
	return nil
}

// Variant carries a value through any transport, choosing the
// envelope by the transport's nature: JSON and YAML carry the
// [Pretty] text, CBOR and MessagePack the [Serialized] pair.
type Variant struct {
	value variant.Value
}

// NewVariant wraps value.
func NewVariant(value variant.Value) Variant {
	return Variant{value: value}
}

// Value returns the wrapped value.
func (v Variant) Value() variant.Value { return v.value }

// Envelope returns the envelope for a transport: a [Pretty] when
// humanReadable is set, a [Serialized] otherwise.
func (v Variant) Envelope(humanReadable bool) any {
	if humanReadable {
		return NewPretty(v.value)
	}
	return NewSerialized(v.value)
}

// MarshalVariant implements [Marshaler].
func (v Variant) MarshalVariant(*Encoder) (variant.Value, error) {
	if !v.value.IsValid() {
		return variant.Value{}, &UnsupportedTypeError{Type: "empty codec.Variant"}
	}
	return v.value, nil
}

// UnmarshalVariant implements [Unmarshaler].
func (v *Variant) UnmarshalVariant(value variant.Value) error {
	v.value = value
	return nil
}
