// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/bureau-foundation/gvariant/lib/signature"
)

// ErrFraming is returned (wrapped) by [Deserialize] when the data
// cannot be split into the children its type requires.
var ErrFraming = errors.New("framing violation")

// Serialize returns the binary form of v with numbers in the given
// byte order. Framing offsets are little-endian in either order.
func (v Value) Serialize(order binary.ByteOrder) []byte {
	return v.appendTo(nil, order)
}

// appendTo appends the serialization of v to a buffer whose start is
// aligned to v's alignment. Containers serialize children into their
// own buffer so alignment is relative to the container start, which
// is equivalent to absolute alignment because every container starts
// aligned to the strictest alignment of its children.
func (v Value) appendTo(dst []byte, order binary.ByteOrder) []byte {
	switch v.class {
	case ClassBoolean, ClassByte:
		return append(dst, byte(v.bits))
	case ClassInt16, ClassUint16:
		return appendFixed(dst, 2, func(b []byte) { order.PutUint16(b, uint16(v.bits)) })
	case ClassInt32, ClassUint32, ClassHandle:
		return appendFixed(dst, 4, func(b []byte) { order.PutUint32(b, uint32(v.bits)) })
	case ClassInt64, ClassUint64, ClassDouble:
		return appendFixed(dst, 8, func(b []byte) { order.PutUint64(b, v.bits) })
	case ClassString, ClassObjectPath, ClassSignature:
		dst = append(dst, v.text...)
		return append(dst, 0)
	case ClassVariant:
		inner := v.children[0]
		dst = append(dst, inner.appendTo(nil, order)...)
		dst = append(dst, 0)
		return append(dst, inner.typ.String()...)
	case ClassMaybe:
		if len(v.children) == 0 {
			return dst
		}
		child := v.children[0]
		dst = append(dst, child.appendTo(nil, order)...)
		if !child.typ.IsFixedSize() {
			dst = append(dst, 0)
		}
		return dst
	case ClassArray:
		return append(dst, v.serializeArray(order)...)
	case ClassTuple, ClassDictEntry:
		return append(dst, v.serializeTuple(order)...)
	}
	return dst
}

func (v Value) serializeArray(order binary.ByteOrder) []byte {
	if v.typ == signature.ByteString {
		return bytes.Clone(v.data)
	}
	element, _ := v.typ.Element()
	alignment := element.Alignment()
	var body []byte
	if element.IsFixedSize() {
		for _, child := range v.children {
			body = child.appendTo(body, order)
		}
		return body
	}
	ends := make([]int, 0, len(v.children))
	for _, child := range v.children {
		body = pad(body, alignment)
		body = child.appendTo(body, order)
		ends = append(ends, len(body))
	}
	return appendOffsets(body, ends)
}

func (v Value) serializeTuple(order binary.ByteOrder) []byte {
	if len(v.children) == 0 {
		return []byte{0}
	}
	var body []byte
	var ends []int
	for index, child := range v.children {
		body = pad(body, child.typ.Alignment())
		body = child.appendTo(body, order)
		if !child.typ.IsFixedSize() && index != len(v.children)-1 {
			ends = append(ends, len(body))
		}
	}
	if fixedSize := v.typ.FixedSize(); fixedSize > 0 {
		for len(body) < fixedSize {
			body = append(body, 0)
		}
		return body
	}
	// Tuple framing offsets are stored last-member-first.
	for i, j := 0, len(ends)-1; i < j; i, j = i+1, j-1 {
		ends[i], ends[j] = ends[j], ends[i]
	}
	return appendOffsets(body, ends)
}

func pad(buffer []byte, alignment int) []byte {
	for len(buffer)%alignment != 0 {
		buffer = append(buffer, 0)
	}
	return buffer
}

// offsetSize returns the framing offset width for a container of the
// given total size.
func offsetSize(size int) int {
	switch {
	case size == 0:
		return 0
	case size <= math.MaxUint8:
		return 1
	case size <= math.MaxUint16:
		return 2
	case uint64(size) <= math.MaxUint32:
		return 4
	default:
		return 8
	}
}

func appendOffsets(body []byte, offsets []int) []byte {
	if len(offsets) == 0 {
		return body
	}
	width := 8
	for _, candidate := range []int{1, 2, 4} {
		if offsetSize(len(body)+candidate*len(offsets)) == candidate {
			width = candidate
			break
		}
	}
	for _, offset := range offsets {
		body = appendOffset(body, uint64(offset), width)
	}
	return body
}

func appendOffset(dst []byte, offset uint64, width int) []byte {
	switch width {
	case 1:
		return append(dst, byte(offset))
	case 2:
		return binary.LittleEndian.AppendUint16(dst, uint16(offset))
	case 4:
		return binary.LittleEndian.AppendUint32(dst, uint32(offset))
	default:
		return binary.LittleEndian.AppendUint64(dst, offset)
	}
}

func readOffset(data []byte, width int) int {
	switch width {
	case 1:
		return int(data[0])
	case 2:
		return int(binary.LittleEndian.Uint16(data))
	case 4:
		return int(binary.LittleEndian.Uint32(data))
	default:
		return int(binary.LittleEndian.Uint64(data))
	}
}

// appendFixed grows dst by size bytes and lets put fill them.
func appendFixed(dst []byte, size int, put func([]byte)) []byte {
	start := len(dst)
	dst = append(dst, make([]byte, size)...)
	put(dst[start:])
	return dst
}

// Deserialize reads a value of the definite type t from data written
// in the given byte order.
func Deserialize(t signature.Type, data []byte, order binary.ByteOrder) (Value, error) {
	if !t.IsDefinite() {
		return Value{}, fmt.Errorf("deserialize: type %q is not definite", t)
	}
	return deserialize(t, data, order)
}

func deserialize(t signature.Type, data []byte, order binary.ByteOrder) (Value, error) {
	class := classOf(t)
	if fixedSize := t.FixedSize(); fixedSize > 0 && len(data) != fixedSize {
		return Value{}, fmt.Errorf("%w: %q needs %d bytes, have %d", ErrFraming, t, fixedSize, len(data))
	}

	switch class {
	case ClassBoolean:
		return NewBoolean(data[0] != 0), nil
	case ClassByte:
		return NewByte(data[0]), nil
	case ClassInt16:
		return NewInt16(int16(order.Uint16(data))), nil
	case ClassUint16:
		return NewUint16(order.Uint16(data)), nil
	case ClassInt32:
		return NewInt32(int32(order.Uint32(data))), nil
	case ClassUint32:
		return NewUint32(order.Uint32(data)), nil
	case ClassHandle:
		return NewHandle(int32(order.Uint32(data))), nil
	case ClassInt64:
		return NewInt64(int64(order.Uint64(data))), nil
	case ClassUint64:
		return NewUint64(order.Uint64(data)), nil
	case ClassDouble:
		return NewDouble(math.Float64frombits(order.Uint64(data))), nil

	case ClassString, ClassObjectPath, ClassSignature:
		if len(data) == 0 || data[len(data)-1] != 0 {
			return Value{}, fmt.Errorf("%w: %q is not NUL-terminated", ErrFraming, t)
		}
		text := string(data[:len(data)-1])
		switch class {
		case ClassObjectPath:
			return NewObjectPath(text)
		case ClassSignature:
			parsed, err := signature.Parse(text)
			if err != nil {
				return Value{}, err
			}
			return NewSignature(parsed), nil
		}
		if err := CheckString(text); err != nil {
			return Value{}, err
		}
		return NewString(text), nil

	case ClassVariant:
		separator := bytes.LastIndexByte(data, 0)
		if separator < 0 {
			return Value{}, fmt.Errorf("%w: boxed value has no type separator", ErrFraming)
		}
		innerType, err := signature.Parse(string(data[separator+1:]))
		if err != nil {
			return Value{}, fmt.Errorf("boxed value type: %w", err)
		}
		if !innerType.IsDefinite() {
			return Value{}, fmt.Errorf("%w: boxed type %q is not definite", ErrFraming, innerType)
		}
		inner, err := deserialize(innerType, data[:separator], order)
		if err != nil {
			return Value{}, err
		}
		return NewVariant(inner), nil

	case ClassMaybe:
		element, _ := t.Element()
		if len(data) == 0 {
			return NewMaybe(element, nil)
		}
		childData := data
		if !element.IsFixedSize() {
			if data[len(data)-1] != 0 {
				return Value{}, fmt.Errorf("%w: maybe of %q lacks trailing NUL", ErrFraming, element)
			}
			childData = data[:len(data)-1]
		}
		child, err := deserialize(element, childData, order)
		if err != nil {
			return Value{}, err
		}
		return NewMaybe(element, &child)

	case ClassArray:
		return deserializeArray(t, data, order)

	case ClassTuple, ClassDictEntry:
		return deserializeTuple(t, data, order)
	}
	return Value{}, fmt.Errorf("deserialize: unsupported type %q", t)
}

func deserializeArray(t signature.Type, data []byte, order binary.ByteOrder) (Value, error) {
	element, _ := t.Element()
	if element == signature.Byte {
		return NewByteArray(data), nil
	}

	var children []Value
	if fixedSize := element.FixedSize(); fixedSize > 0 {
		if len(data)%fixedSize != 0 {
			return Value{}, fmt.Errorf("%w: array of %q has %d bytes", ErrFraming, element, len(data))
		}
		for start := 0; start < len(data); start += fixedSize {
			child, err := deserialize(element, data[start:start+fixedSize], order)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", len(children), err)
			}
			children = append(children, child)
		}
		return NewArray(element, children)
	}

	if len(data) == 0 {
		return NewArray(element, nil)
	}
	width := offsetSize(len(data))
	if len(data) < width {
		return Value{}, fmt.Errorf("%w: array of %q truncated", ErrFraming, element)
	}
	offsetsStart := readOffset(data[len(data)-width:], width)
	if offsetsStart > len(data) || (len(data)-offsetsStart)%width != 0 {
		return Value{}, fmt.Errorf("%w: array of %q has bad offset table", ErrFraming, element)
	}
	count := (len(data) - offsetsStart) / width
	alignment := element.Alignment()
	position := 0
	for index := range count {
		end := readOffset(data[offsetsStart+index*width:], width)
		start := signature.Align(position, alignment)
		if start > end || end > offsetsStart {
			return Value{}, fmt.Errorf("%w: array of %q element %d out of bounds", ErrFraming, element, index)
		}
		child, err := deserialize(element, data[start:end], order)
		if err != nil {
			return Value{}, fmt.Errorf("element %d: %w", index, err)
		}
		children = append(children, child)
		position = end
	}
	return NewArray(element, children)
}

func deserializeTuple(t signature.Type, data []byte, order binary.ByteOrder) (Value, error) {
	members, _ := t.Items()
	if len(members) == 0 {
		return NewTuple(), nil
	}

	width := offsetSize(len(data))
	offsetsEnd := len(data)
	position := 0
	children := make([]Value, 0, len(members))
	for index, member := range members {
		start := signature.Align(position, member.Alignment())
		var end int
		switch {
		case member.IsFixedSize():
			end = start + member.FixedSize()
		case index == len(members)-1:
			end = offsetsEnd
		default:
			if offsetsEnd < width {
				return Value{}, fmt.Errorf("%w: tuple %q truncated", ErrFraming, t)
			}
			offsetsEnd -= width
			end = readOffset(data[offsetsEnd:], width)
		}
		if start > end || end > offsetsEnd {
			return Value{}, fmt.Errorf("%w: tuple %q member %d out of bounds", ErrFraming, t, index)
		}
		child, err := deserialize(member, data[start:end], order)
		if err != nil {
			return Value{}, fmt.Errorf("member %d: %w", index, err)
		}
		children = append(children, child)
		position = end
	}

	if t.IsDictEntry() {
		return NewDictEntry(children[0], children[1])
	}
	return NewTuple(children...), nil
}

// Byteswap returns v with every numeric leaf reinterpreted in the
// opposite byte order. Booleans, bytes and strings are unchanged.
func (v Value) Byteswap() Value {
	switch v.class {
	case ClassInt16:
		swapped := v
		swapped.bits = uint64(int64(int16(bits.ReverseBytes16(uint16(v.bits)))))
		return swapped
	case ClassUint16:
		swapped := v
		swapped.bits = uint64(bits.ReverseBytes16(uint16(v.bits)))
		return swapped
	case ClassInt32, ClassHandle:
		swapped := v
		swapped.bits = uint64(int64(int32(bits.ReverseBytes32(uint32(v.bits)))))
		return swapped
	case ClassUint32:
		swapped := v
		swapped.bits = uint64(bits.ReverseBytes32(uint32(v.bits)))
		return swapped
	case ClassInt64, ClassUint64, ClassDouble:
		swapped := v
		swapped.bits = bits.ReverseBytes64(v.bits)
		return swapped
	case ClassVariant, ClassMaybe, ClassArray, ClassTuple, ClassDictEntry:
		if len(v.children) == 0 {
			return v
		}
		swapped := v
		swapped.children = make([]Value, len(v.children))
		for index, child := range v.children {
			swapped.children[index] = child.Byteswap()
		}
		return swapped
	}
	return v
}
