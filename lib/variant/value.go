// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bureau-foundation/gvariant/lib/signature"
)

// Class identifies the kind of a [Value].
type Class uint8

const (
	ClassInvalid Class = iota
	ClassBoolean
	ClassByte
	ClassInt16
	ClassUint16
	ClassInt32
	ClassUint32
	ClassInt64
	ClassUint64
	ClassHandle
	ClassDouble
	ClassString
	ClassObjectPath
	ClassSignature
	ClassVariant
	ClassMaybe
	ClassArray
	ClassTuple
	ClassDictEntry
)

var classNames = [...]string{
	ClassInvalid:    "invalid",
	ClassBoolean:    "boolean",
	ClassByte:       "byte",
	ClassInt16:      "int16",
	ClassUint16:     "uint16",
	ClassInt32:      "int32",
	ClassUint32:     "uint32",
	ClassInt64:      "int64",
	ClassUint64:     "uint64",
	ClassHandle:     "handle",
	ClassDouble:     "double",
	ClassString:     "string",
	ClassObjectPath: "objectpath",
	ClassSignature:  "signature",
	ClassVariant:    "variant",
	ClassMaybe:      "maybe",
	ClassArray:      "array",
	ClassTuple:      "tuple",
	ClassDictEntry:  "dict entry",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", c)
}

// IsInteger reports whether the class holds an integer (booleans
// excluded).
func (c Class) IsInteger() bool {
	switch c {
	case ClassByte, ClassInt16, ClassUint16, ClassInt32, ClassUint32,
		ClassInt64, ClassUint64, ClassHandle:
		return true
	}
	return false
}

// IsStringLike reports whether the class is string, object path or
// signature.
func (c Class) IsStringLike() bool {
	return c == ClassString || c == ClassObjectPath || c == ClassSignature
}

// IsBasic reports whether the class is a basic (non-container) kind.
func (c Class) IsBasic() bool {
	return c >= ClassBoolean && c <= ClassSignature
}

func classOf(t signature.Type) Class {
	text := t.String()
	if text == "" {
		return ClassInvalid
	}
	switch text[0] {
	case 'b':
		return ClassBoolean
	case 'y':
		return ClassByte
	case 'n':
		return ClassInt16
	case 'q':
		return ClassUint16
	case 'i':
		return ClassInt32
	case 'u':
		return ClassUint32
	case 'x':
		return ClassInt64
	case 't':
		return ClassUint64
	case 'h':
		return ClassHandle
	case 'd':
		return ClassDouble
	case 's':
		return ClassString
	case 'o':
		return ClassObjectPath
	case 'g':
		return ClassSignature
	case 'v':
		return ClassVariant
	case 'm':
		return ClassMaybe
	case 'a':
		return ClassArray
	case '(':
		return ClassTuple
	case '{':
		return ClassDictEntry
	}
	return ClassInvalid
}

// Value is an immutable variant value. The zero Value is invalid.
//
// Values are small and are passed by value. Children are shared
// between copies, which is safe because nothing mutates them after
// construction.
type Value struct {
	typ   signature.Type
	class Class

	// bits holds booleans, integers (sign-extended for signed
	// classes) and the IEEE 754 bits of doubles.
	bits uint64
	// text holds string, object path and signature payloads.
	text string
	// data holds the payload of byte arrays ("ay"), which keep their
	// bytes contiguous instead of one child per byte.
	data []byte

	children []Value
}

// NewBoolean returns a boolean value.
func NewBoolean(value bool) Value {
	var bits uint64
	if value {
		bits = 1
	}
	return Value{typ: signature.Boolean, class: ClassBoolean, bits: bits}
}

// NewByte returns a byte value.
func NewByte(value uint8) Value {
	return Value{typ: signature.Byte, class: ClassByte, bits: uint64(value)}
}

// NewInt16 returns a signed 16-bit value.
func NewInt16(value int16) Value {
	return Value{typ: signature.Int16, class: ClassInt16, bits: uint64(int64(value))}
}

// NewUint16 returns an unsigned 16-bit value.
func NewUint16(value uint16) Value {
	return Value{typ: signature.Uint16, class: ClassUint16, bits: uint64(value)}
}

// NewInt32 returns a signed 32-bit value.
func NewInt32(value int32) Value {
	return Value{typ: signature.Int32, class: ClassInt32, bits: uint64(int64(value))}
}

// NewUint32 returns an unsigned 32-bit value.
func NewUint32(value uint32) Value {
	return Value{typ: signature.Uint32, class: ClassUint32, bits: uint64(value)}
}

// NewInt64 returns a signed 64-bit value.
func NewInt64(value int64) Value {
	return Value{typ: signature.Int64, class: ClassInt64, bits: uint64(value)}
}

// NewUint64 returns an unsigned 64-bit value.
func NewUint64(value uint64) Value {
	return Value{typ: signature.Uint64, class: ClassUint64, bits: value}
}

// NewHandle returns a handle value: an index into an out-of-band
// array of file descriptors.
func NewHandle(value int32) Value {
	return Value{typ: signature.Handle, class: ClassHandle, bits: uint64(int64(value))}
}

// NewDouble returns a double value.
func NewDouble(value float64) Value {
	return Value{typ: signature.Double, class: ClassDouble, bits: math.Float64bits(value)}
}

// ErrInvalidString is returned (wrapped) by [CheckString] for text
// that is not NUL-free UTF-8.
var ErrInvalidString = errors.New("invalid string")

// CheckString reports whether text can be held by a string value:
// valid UTF-8 without NUL bytes.
func CheckString(text string) error {
	if index := strings.IndexByte(text, 0); index >= 0 {
		return fmt.Errorf("%w: NUL byte at offset %d", ErrInvalidString, index)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidString, text)
	}
	return nil
}

// NewString returns a string value. The caller checks text with
// [CheckString]; the binary form is NUL-terminated.
func NewString(value string) Value {
	return Value{typ: signature.String, class: ClassString, text: value}
}

// NewObjectPath returns an object path value after checking the path
// syntax: "/" or slash-separated non-empty elements of [A-Za-z0-9_].
func NewObjectPath(path string) (Value, error) {
	if !IsObjectPath(path) {
		return Value{}, fmt.Errorf("invalid object path %q", path)
	}
	return Value{typ: signature.ObjectPath, class: ClassObjectPath, text: path}, nil
}

// IsObjectPath reports whether path is a syntactically valid object path.
func IsObjectPath(path string) bool {
	if path == "/" {
		return true
	}
	if !strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return false
	}
	for _, element := range strings.Split(path[1:], "/") {
		if element == "" {
			return false
		}
		for _, r := range element {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
				return false
			}
		}
	}
	return true
}

// NewSignature returns a signature value holding t.
func NewSignature(t signature.Type) Value {
	return Value{typ: signature.Signature, class: ClassSignature, text: t.String()}
}

// NewVariant boxes inner into a value of type "v".
func NewVariant(inner Value) Value {
	return Value{typ: signature.Variant, class: ClassVariant, children: []Value{inner}}
}

// NewMaybe returns a maybe of the definite element type. A nil child
// is "nothing".
func NewMaybe(element signature.Type, child *Value) (Value, error) {
	if !element.IsDefinite() {
		return Value{}, fmt.Errorf("maybe element type %q is not definite", element)
	}
	value := Value{typ: signature.MaybeOf(element), class: ClassMaybe}
	if child != nil {
		if child.typ != element {
			return Value{}, fmt.Errorf("maybe of %q cannot hold a value of type %q", element, child.typ)
		}
		value.children = []Value{*child}
	}
	return value, nil
}

// NewArray returns an array of the definite element type. Every child
// must have exactly that type. The children slice is copied.
func NewArray(element signature.Type, children []Value) (Value, error) {
	if !element.IsDefinite() {
		return Value{}, fmt.Errorf("array element type %q is not definite", element)
	}
	if element == signature.Byte {
		data := make([]byte, len(children))
		for index, child := range children {
			if child.class != ClassByte {
				return Value{}, fmt.Errorf("array of %q: element %d has type %q", element, index, child.typ)
			}
			data[index] = uint8(child.bits)
		}
		return Value{typ: signature.ByteString, class: ClassArray, data: data}, nil
	}
	for index, child := range children {
		if child.typ != element {
			return Value{}, fmt.Errorf("array of %q: element %d has type %q", element, index, child.typ)
		}
	}
	return Value{typ: signature.ArrayOf(element), class: ClassArray, children: slices.Clone(children)}, nil
}

// NewByteArray returns an "ay" value holding a copy of data.
func NewByteArray(data []byte) Value {
	return Value{typ: signature.ByteString, class: ClassArray, data: bytes.Clone(data)}
}

// NewTuple returns a tuple of the given children. No children is the
// unit value "()".
func NewTuple(children ...Value) Value {
	types := make([]signature.Type, len(children))
	for index, child := range children {
		types[index] = child.typ
	}
	return Value{typ: signature.TupleOf(types...), class: ClassTuple, children: slices.Clone(children)}
}

// NewDictEntry returns a dict entry. The key must be of a basic type.
func NewDictEntry(key, value Value) (Value, error) {
	entryType, err := signature.DictEntryOf(key.typ, value.typ)
	if err != nil {
		return Value{}, fmt.Errorf("dict entry key: %w", err)
	}
	return Value{typ: entryType, class: ClassDictEntry, children: []Value{key, value}}, nil
}

// IsValid reports whether v is a constructed value.
func (v Value) IsValid() bool { return v.class != ClassInvalid }

// Type returns the definite type of v.
func (v Value) Type() signature.Type { return v.typ }

// Class returns the kind of v.
func (v Value) Class() Class { return v.class }

// Bool returns the payload of a boolean value.
func (v Value) Bool() bool { return v.bits != 0 }

// Byte returns the payload of a byte value.
func (v Value) Byte() uint8 { return uint8(v.bits) }

// Int16 returns the payload of an int16 value.
func (v Value) Int16() int16 { return int16(v.bits) }

// Uint16 returns the payload of a uint16 value.
func (v Value) Uint16() uint16 { return uint16(v.bits) }

// Int32 returns the payload of an int32 or handle value.
func (v Value) Int32() int32 { return int32(v.bits) }

// Uint32 returns the payload of a uint32 value.
func (v Value) Uint32() uint32 { return uint32(v.bits) }

// Int64 returns the payload of an int64 value.
func (v Value) Int64() int64 { return int64(v.bits) }

// Uint64 returns the payload of a uint64 value.
func (v Value) Uint64() uint64 { return v.bits }

// Double returns the payload of a double value.
func (v Value) Double() float64 { return math.Float64frombits(v.bits) }

// Text returns the payload of a string, object path or signature
// value.
func (v Value) Text() string { return v.text }

// Signature returns the payload of a signature value.
func (v Value) Signature() (signature.Type, error) {
	if v.class != ClassSignature {
		return signature.Type{}, fmt.Errorf("value of type %q is not a signature", v.typ)
	}
	return signature.Parse(v.text)
}

// Integer returns the value of any integer or boolean class as a
// signed or unsigned 64-bit quantity. Exactly one of the two results
// is meaningful, as reported by signed. ok is false for other classes.
func (v Value) Integer() (signedValue int64, unsignedValue uint64, signed bool, ok bool) {
	switch v.class {
	case ClassInt16, ClassInt32, ClassInt64, ClassHandle:
		return int64(v.bits), 0, true, true
	case ClassBoolean, ClassByte, ClassUint16, ClassUint32, ClassUint64:
		return 0, v.bits, false, true
	}
	return 0, 0, false, false
}

// Bytes returns a copy of the payload of a byte array.
func (v Value) Bytes() ([]byte, bool) {
	if v.typ != signature.ByteString {
		return nil, false
	}
	return bytes.Clone(v.data), true
}

// NumChildren returns the number of children of a container value,
// or 0 for primitives.
func (v Value) NumChildren() int {
	if v.typ == signature.ByteString {
		return len(v.data)
	}
	return len(v.children)
}

// Child returns the child at index. It panics if index is out of range.
func (v Value) Child(index int) Value {
	if v.typ == signature.ByteString {
		return NewByte(v.data[index])
	}
	return v.children[index]
}

// Children returns the children of a container value in order.
func (v Value) Children() []Value {
	if v.typ == signature.ByteString {
		children := make([]Value, len(v.data))
		for index, b := range v.data {
			children[index] = NewByte(b)
		}
		return children
	}
	return slices.Clone(v.children)
}

// Unbox returns the value inside a boxed value, or v itself if v is
// not boxed.
func (v Value) Unbox() Value {
	if v.class == ClassVariant {
		return v.children[0]
	}
	return v
}

// Equal reports whether v and other have the same type and content.
// Doubles compare by bit pattern, so NaN equals itself.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ || v.class != other.class {
		return false
	}
	if v.class.IsBasic() {
		return v.bits == other.bits && v.text == other.text
	}
	if v.typ == signature.ByteString {
		return bytes.Equal(v.data, other.data)
	}
	if len(v.children) != len(other.children) {
		return false
	}
	for index := range v.children {
		if !v.children[index].Equal(other.children[index]) {
			return false
		}
	}
	return true
}

// String returns the annotated text form of v.
func (v Value) String() string {
	return v.Print(true)
}
