// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/bureau-foundation/gvariant/lib/signature"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON writes the tree of the held value. Objects keep
// dictionary order, boxed values appear as their contents, and
// non-string dictionary keys are written in their decimal or text
// form.
func (a Any) MarshalJSON() ([]byte, error) {
	tree, err := a.Interface()
	if err != nil {
		return nil, err
	}
	return encodeJSON(tree)
}

// UnmarshalJSON parses JSON and infers a value from it. Objects become
// dictionaries in source order; integers become int64 (uint64 when
// too large for int64) and other numbers double. Doubles are written
// with a fraction or exponent, so they read back as doubles.
func (a *Any) UnmarshalJSON(data []byte) error {
	tree, err := ParseJSON(data)
	if err != nil {
		return err
	}
	return a.setTree(tree)
}

// MarshalJSON writes m as a JSON object in entry order.
func (m Map) MarshalJSON() ([]byte, error) { return encodeJSON(m) }

// MarshalJSON writes the contents of b.
func (b Boxed) MarshalJSON() ([]byte, error) { return encodeJSON(b.Value) }

// MarshalJSON writes d as a JSON object of unboxed values.
func (d Dict) MarshalJSON() ([]byte, error) {
	tree, err := d.tree()
	if err != nil {
		return nil, err
	}
	return encodeJSON(tree)
}

// UnmarshalJSON reads a JSON object, inferring each value.
func (d *Dict) UnmarshalJSON(data []byte) error {
	var dynamic Any
	if err := dynamic.UnmarshalJSON(data); err != nil {
		return err
	}
	return d.UnmarshalVariant(dynamic.Value())
}

// MarshalJSON writes the [Pretty] text of v as a JSON string.
func (v Variant) MarshalJSON() ([]byte, error) {
	if !v.value.IsValid() {
		return nil, &UnsupportedTypeError{Type: "empty codec.Variant"}
	}
	return jsonAPI.Marshal(string(NewPretty(v.value)))
}

// UnmarshalJSON parses a JSON string holding [Pretty] text.
func (v *Variant) UnmarshalJSON(data []byte) error {
	var text string
	if err := jsonAPI.Unmarshal(data, &text); err != nil {
		return err
	}
	value, err := Pretty(text).Value()
	if err != nil {
		return err
	}
	v.value = value
	return nil
}

// ParseJSON parses one JSON document into the ordered tree: objects
// become [Map] in source order, arrays []any, and numbers
// [json.Number], which adopt the expected numeric type when the tree
// is encoded with [WithType].
func ParseJSON(data []byte) (any, error) {
	iter := jsonAPI.BorrowIterator(data)
	defer jsonAPI.ReturnIterator(iter)

	tree := readJSON(iter)
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return nil, fmt.Errorf("parsing JSON: %w", iter.Error)
	}
	if next := iter.WhatIsNext(); next != jsoniter.InvalidValue {
		return nil, errors.New("parsing JSON: trailing data after document")
	}
	return tree, nil
}

func readJSON(iter *jsoniter.Iterator) any {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		result := Map{}
		iter.ReadObjectCB(func(iter *jsoniter.Iterator, field string) bool {
			result = append(result, Entry{Key: field, Value: readJSON(iter)})
			return iter.Error == nil
		})
		return result
	case jsoniter.ArrayValue:
		list := []any{}
		iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
			list = append(list, readJSON(iter))
			return iter.Error == nil
		})
		return list
	case jsoniter.StringValue:
		return iter.ReadString()
	case jsoniter.NumberValue:
		return iter.ReadNumber()
	case jsoniter.BoolValue:
		return iter.ReadBool()
	case jsoniter.NilValue:
		iter.ReadNil()
		return nil
	}
	iter.ReportError("readJSON", "expected a JSON value")
	return nil
}

func encodeJSON(tree any) ([]byte, error) {
	stream := jsonAPI.BorrowStream(nil)
	defer jsonAPI.ReturnStream(stream)

	if err := writeJSON(stream, tree); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func writeJSON(stream *jsoniter.Stream, tree any) error {
	switch node := tree.(type) {
	case nil:
		stream.WriteNil()
	case bool:
		stream.WriteBool(node)
	case uint8:
		stream.WriteUint8(node)
	case int16:
		stream.WriteInt16(node)
	case uint16:
		stream.WriteUint16(node)
	case int32:
		stream.WriteInt32(node)
	case uint32:
		stream.WriteUint32(node)
	case int64:
		stream.WriteInt64(node)
	case uint64:
		stream.WriteUint64(node)
	case Handle:
		stream.WriteInt32(int32(node))
	case float64:
		if math.IsNaN(node) || math.IsInf(node, 0) {
			return &UnsupportedTypeError{Type: "JSON number " + strconv.FormatFloat(node, 'g', -1, 64)}
		}
		stream.WriteRaw(floatLiteral(node))
	case string:
		stream.WriteString(node)
	case ObjectPath:
		stream.WriteString(string(node))
	case signature.Type:
		stream.WriteString(node.String())
	case json.Number:
		stream.WriteRaw(string(node))
	case Boxed:
		return writeJSON(stream, node.Value)
	case *any:
		return writeJSON(stream, *node)
	case Map:
		stream.WriteObjectStart()
		for index, entry := range node {
			if index > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(jsonKey(entry.Key))
			if err := writeJSON(stream, entry.Value); err != nil {
				return err
			}
		}
		stream.WriteObjectEnd()
	case []any:
		return writeJSONList(stream, node)
	case Tuple:
		return writeJSONList(stream, node)
	case Entry:
		return writeJSONList(stream, []any{node.Key, node.Value})
	default:
		stream.WriteVal(node)
	}
	return nil
}

func writeJSONList(stream *jsoniter.Stream, list []any) error {
	stream.WriteArrayStart()
	for index, item := range list {
		if index > 0 {
			stream.WriteMore()
		}
		if err := writeJSON(stream, item); err != nil {
			return err
		}
	}
	stream.WriteArrayEnd()
	return nil
}

func jsonKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case ObjectPath:
		return string(k)
	case signature.Type:
		return k.String()
	}
	return fmt.Sprint(key)
}
