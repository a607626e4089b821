// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/bureau-foundation/gvariant/lib/signature"
)

// EncodeMsgpack writes the tree of the held value. Integers keep
// their width (a uint16 is written in the uint16 format), maps keep
// dictionary order and boxed values appear as their contents.
func (a Any) EncodeMsgpack(enc *msgpack.Encoder) error {
	tree, err := a.Interface()
	if err != nil {
		return err
	}
	return writeMsgpack(enc, tree)
}

// DecodeMsgpack reads one MessagePack item and infers a value from
// it. Fixed-width integer formats decode to their width; positive and
// negative fixints decode as int64, like JSON integers. The msgpack
// decoder resets the target on a top-level nil without calling this
// method, which leaves the receiver empty; nested nils become maybe-variant
// nothing.
func (a *Any) DecodeMsgpack(dec *msgpack.Decoder) error {
	tree, err := readMsgpack(dec)
	if err != nil {
		return err
	}
	return a.setTree(tree)
}

// EncodeMsgpack writes the [Serialized] envelope of v as a two-element
// array of signature and payload.
func (v Variant) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !v.value.IsValid() {
		return &UnsupportedTypeError{Type: "empty codec.Variant"}
	}
	envelope := NewSerialized(v.value)
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeString(envelope.Signature.String()); err != nil {
		return err
	}
	return enc.EncodeBytes(envelope.Data)
}

// DecodeMsgpack reads a [Serialized] envelope.
func (v *Variant) DecodeMsgpack(dec *msgpack.Decoder) error {
	count, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if count != 2 {
		return &LengthMismatchError{Actual: count, Expected: 2}
	}
	text, err := dec.DecodeString()
	if err != nil {
		return err
	}
	sig, err := signature.Parse(text)
	if err != nil {
		return err
	}
	data, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	value, err := Serialized{Signature: sig, Data: data}.Value()
	if err != nil {
		return err
	}
	v.value = value
	return nil
}

func writeMsgpack(enc *msgpack.Encoder, tree any) error {
	switch node := tree.(type) {
	case nil:
		return enc.EncodeNil()
	case bool:
		return enc.EncodeBool(node)
	case uint8:
		return enc.EncodeUint8(node)
	case int16:
		return enc.EncodeInt16(node)
	case uint16:
		return enc.EncodeUint16(node)
	case int32:
		return enc.EncodeInt32(node)
	case uint32:
		return enc.EncodeUint32(node)
	case int64:
		return enc.EncodeInt64(node)
	case uint64:
		return enc.EncodeUint64(node)
	case Handle:
		return enc.EncodeInt32(int32(node))
	case float64:
		return enc.EncodeFloat64(node)
	case string:
		return enc.EncodeString(node)
	case ObjectPath:
		return enc.EncodeString(string(node))
	case signature.Type:
		return enc.EncodeString(node.String())
	case []byte:
		return enc.EncodeBytes(node)
	case Boxed:
		return writeMsgpack(enc, node.Value)
	case *any:
		return writeMsgpack(enc, *node)
	case Map:
		if err := enc.EncodeMapLen(len(node)); err != nil {
			return err
		}
		for _, entry := range node {
			if err := writeMsgpack(enc, entry.Key); err != nil {
				return err
			}
			if err := writeMsgpack(enc, entry.Value); err != nil {
				return err
			}
		}
		return nil
	case []any:
		return writeMsgpackList(enc, node)
	case Tuple:
		return writeMsgpackList(enc, node)
	case Entry:
		return writeMsgpackList(enc, []any{node.Key, node.Value})
	}
	return enc.Encode(tree)
}

func writeMsgpackList(enc *msgpack.Encoder, list []any) error {
	if err := enc.EncodeArrayLen(len(list)); err != nil {
		return err
	}
	for _, item := range list {
		if err := writeMsgpack(enc, item); err != nil {
			return err
		}
	}
	return nil
}

func readMsgpack(dec *msgpack.Decoder) (any, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		count, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		result := make(Map, 0, max(count, 0))
		for range count {
			key, err := readMsgpack(dec)
			if err != nil {
				return nil, err
			}
			value, err := readMsgpack(dec)
			if err != nil {
				return nil, fmt.Errorf("key %v: %w", key, err)
			}
			result = append(result, Entry{Key: key, Value: value})
		}
		return result, nil
	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		count, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		list := make([]any, 0, max(count, 0))
		for index := range count {
			item, err := readMsgpack(dec)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", index, err)
			}
			list = append(list, item)
		}
		return list, nil
	case msgpcode.IsFixedNum(code):
		return dec.DecodeInt64()
	}
	return dec.DecodeInterface()
}
