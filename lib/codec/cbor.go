// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/bureau-foundation/gvariant/lib/signature"
)

// BoxedTag is the CBOR tag number wrapping the contents of a boxed
// value ("gv" in ASCII).
const BoxedTag = 0x6776

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): smallest integer encoding, no
// indefinite-length items. Container heads for ordered trees are
// written by hand so that dictionary order survives; every leaf goes
// through encMode.
var encMode cbor.EncMode

// decMode is the CBOR decoder configured to accept standard CBOR.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// signature.Type implements encoding.TextMarshaler and serializes
	// as a CBOR text string.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Generic map targets outside the ordered tree decode to
		// map[string]any, the type the rest of the Go ecosystem
		// expects.
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// EncodeCBOR encodes v to CBOR using Core Deterministic Encoding.
func EncodeCBOR(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// DecodeCBOR decodes CBOR data into v.
func DecodeCBOR(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// DiagnoseCBOR returns the CBOR diagnostic notation (RFC 8949 §8) for
// the entire contents of data.
func DiagnoseCBOR(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// MarshalCBOR encodes the tree of the held value. Dictionaries keep
// their order and boxed values carry [BoxedTag].
func (a Any) MarshalCBOR() ([]byte, error) {
	tree, err := a.Interface()
	if err != nil {
		return nil, err
	}
	return appendCBOR(nil, tree)
}

// UnmarshalCBOR decodes one CBOR item and infers a value from it.
func (a *Any) UnmarshalCBOR(data []byte) error {
	tree, rest, err := readCBOR(data)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("codec: %d trailing bytes after CBOR item", len(rest))
	}
	return a.setTree(tree)
}

// MarshalCBOR encodes m as a CBOR map in entry order.
func (m Map) MarshalCBOR() ([]byte, error) {
	return appendCBOR(nil, m)
}

// MarshalCBOR encodes b under [BoxedTag].
func (b Boxed) MarshalCBOR() ([]byte, error) {
	return appendCBOR(nil, b)
}

// MarshalCBOR encodes d as a CBOR map of unboxed values.
func (d Dict) MarshalCBOR() ([]byte, error) {
	tree, err := d.tree()
	if err != nil {
		return nil, err
	}
	return appendCBOR(nil, tree)
}

// UnmarshalCBOR decodes a CBOR map with string keys.
func (d *Dict) UnmarshalCBOR(data []byte) error {
	var dynamic Any
	if err := dynamic.UnmarshalCBOR(data); err != nil {
		return err
	}
	return d.UnmarshalVariant(dynamic.Value())
}

// MarshalCBOR encodes the [Serialized] envelope of v.
func (v Variant) MarshalCBOR() ([]byte, error) {
	if !v.value.IsValid() {
		return nil, &UnsupportedTypeError{Type: "empty codec.Variant"}
	}
	return encMode.Marshal(NewSerialized(v.value))
}

// UnmarshalCBOR decodes a [Serialized] envelope.
func (v *Variant) UnmarshalCBOR(data []byte) error {
	var envelope Serialized
	if err := decMode.Unmarshal(data, &envelope); err != nil {
		return err
	}
	value, err := envelope.Value()
	if err != nil {
		return err
	}
	v.value = value
	return nil
}

const (
	cborArray = 4
	cborMap   = 5
	cborTag   = 6
)

func appendHead(dst []byte, major byte, n uint64) []byte {
	switch {
	case n < 24:
		return append(dst, major<<5|byte(n))
	case n <= math.MaxUint8:
		return append(dst, major<<5|24, byte(n))
	case n <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(dst, major<<5|25), uint16(n))
	case n <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(dst, major<<5|26), uint32(n))
	}
	return binary.BigEndian.AppendUint64(append(dst, major<<5|27), n)
}

func appendCBOR(dst []byte, tree any) ([]byte, error) {
	switch node := tree.(type) {
	case Map:
		dst = appendHead(dst, cborMap, uint64(len(node)))
		for _, entry := range node {
			var err error
			if dst, err = appendCBOR(dst, entry.Key); err != nil {
				return nil, err
			}
			if dst, err = appendCBOR(dst, entry.Value); err != nil {
				return nil, err
			}
		}
		return dst, nil
	case []any:
		return appendCBORList(dst, node)
	case Tuple:
		return appendCBORList(dst, node)
	case Entry:
		return appendCBORList(dst, []any{node.Key, node.Value})
	case Boxed:
		return appendCBOR(appendHead(dst, cborTag, BoxedTag), node.Value)
	case *any:
		return appendCBOR(dst, *node)
	case signature.Type:
		return appendCBORLeaf(dst, node.String())
	}
	return appendCBORLeaf(dst, tree)
}

func appendCBORList(dst []byte, list []any) ([]byte, error) {
	dst = appendHead(dst, cborArray, uint64(len(list)))
	for _, item := range list {
		var err error
		if dst, err = appendCBOR(dst, item); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func appendCBORLeaf(dst []byte, leaf any) ([]byte, error) {
	encoded, err := encMode.Marshal(leaf)
	if err != nil {
		return nil, err
	}
	return append(dst, encoded...), nil
}

var errIndefiniteLength = errors.New("codec: indefinite-length CBOR items are not supported")

// readHead reads the head of an array, map or tag item.
func readHead(data []byte) (uint64, []byte, error) {
	info := data[0] & 0x1f
	data = data[1:]
	var width int
	switch {
	case info < 24:
		return uint64(info), data, nil
	case info == 24:
		width = 1
	case info == 25:
		width = 2
	case info == 26:
		width = 4
	case info == 27:
		width = 8
	case info == 31:
		return 0, nil, errIndefiniteLength
	default:
		return 0, nil, fmt.Errorf("codec: malformed CBOR head 0x%02x", info)
	}
	if len(data) < width {
		return 0, nil, io.ErrUnexpectedEOF
	}
	var n uint64
	for _, b := range data[:width] {
		n = n<<8 | uint64(b)
	}
	return n, data[width:], nil
}

// readCBOR decodes the first CBOR item of data into the ordered tree.
// Maps become [Map] in wire order, [BoxedTag] items become [Boxed],
// and unsigned integers that fit int64 become int64 so that inference
// treats them like JSON integers.
func readCBOR(data []byte) (any, []byte, error) {
	if len(data) == 0 {
		return nil, nil, io.ErrUnexpectedEOF
	}
	switch data[0] >> 5 {
	case cborArray:
		count, rest, err := readHead(data)
		if err != nil {
			return nil, nil, err
		}
		list := make([]any, 0, min(count, uint64(len(rest))))
		for range count {
			var item any
			if item, rest, err = readCBOR(rest); err != nil {
				return nil, nil, err
			}
			list = append(list, item)
		}
		return list, rest, nil
	case cborMap:
		count, rest, err := readHead(data)
		if err != nil {
			return nil, nil, err
		}
		result := make(Map, 0, min(count, uint64(len(rest))))
		for range count {
			var key, value any
			if key, rest, err = readCBOR(rest); err != nil {
				return nil, nil, err
			}
			if value, rest, err = readCBOR(rest); err != nil {
				return nil, nil, err
			}
			result = append(result, Entry{Key: key, Value: value})
		}
		return result, rest, nil
	case cborTag:
		number, rest, err := readHead(data)
		if err != nil {
			return nil, nil, err
		}
		if number == BoxedTag {
			inner, rest, err := readCBOR(rest)
			if err != nil {
				return nil, nil, err
			}
			return Boxed{Value: inner}, rest, nil
		}
	}

	var leaf any
	rest, err := decMode.UnmarshalFirst(data, &leaf)
	if err != nil {
		return nil, nil, err
	}
	if unsigned, ok := leaf.(uint64); ok && unsigned <= math.MaxInt64 {
		leaf = int64(unsigned)
	}
	return leaf, rest, nil
}
