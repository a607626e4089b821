// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

// Any holds a variant value of any type, either owned or borrowed
// from the caller. Replacing the value with [Any.Set] never writes
// through a borrow; it drops the borrow and owns the new value.
//
// Any encodes as the value it holds and decodes whatever value it is
// given. Its transport methods (JSON, CBOR, YAML, MessagePack) go
// through the ordered tree returned by [Any.Interface].
type Any struct {
	owned    variant.Value
	borrowed *variant.Value
}

// NewAny returns an Any owning value.
func NewAny(value variant.Value) Any {
	return Any{owned: value}
}

// AnyOf returns an Any borrowing the value at value.
func AnyOf(value *variant.Value) Any {
	return Any{borrowed: value}
}

// Value returns the held value. It is invalid for the zero Any.
func (a Any) Value() variant.Value {
	if a.borrowed != nil {
		return *a.borrowed
	}
	return a.owned
}

// IsBorrowed reports whether a refers to a value owned elsewhere.
func (a Any) IsBorrowed() bool { return a.borrowed != nil }

// Owned returns an Any that owns a copy of the held value.
func (a Any) Owned() Any {
	return Any{owned: a.Value()}
}

// Set replaces the held value.
func (a *Any) Set(value variant.Value) {
	a.borrowed = nil
	a.owned = value
}

// Type returns the type of the held value.
func (a Any) Type() signature.Type { return a.Value().Type() }

// String returns the annotated text form of the held value.
func (a Any) String() string { return a.Value().Print(true) }

// Interface converts the held value to the ordered Go tree:
//
//	b y n q i u x t d s   bool, uint8, int16, uint16, int32, uint32,
//	                      int64, uint64, float64, string
//	h o g                 Handle, ObjectPath, signature.Type
//	v                     Boxed
//	m<T>                  *any for just, untyped nil for nothing
//	ay                    []byte
//	a{K*}                 Map (values of a{?v} are unboxed first)
//	a<T>                  []any
//	(...)                 Tuple
//	{KV}                  Entry
func (a Any) Interface() (any, error) {
	value := a.Value()
	if !value.IsValid() {
		return nil, &UnsupportedTypeError{Type: "invalid variant.Value"}
	}
	return valueInterface(value)
}

// MarshalVariant implements [Marshaler].
func (a Any) MarshalVariant(*Encoder) (variant.Value, error) {
	value := a.Value()
	if !value.IsValid() {
		return variant.Value{}, &UnsupportedTypeError{Type: "empty codec.Any"}
	}
	return value, nil
}

// UnmarshalVariant implements [Unmarshaler].
func (a *Any) UnmarshalVariant(value variant.Value) error {
	a.Set(value)
	return nil
}

// setTree infers a value from a decoded transport tree and owns it.
func (a *Any) setTree(tree any) error {
	value, err := Marshal(tree)
	if err != nil {
		return err
	}
	a.Set(value)
	return nil
}

func valueInterface(value variant.Value) (any, error) {
	switch value.Class() {
	case variant.ClassBoolean:
		return value.Bool(), nil
	case variant.ClassByte:
		return value.Byte(), nil
	case variant.ClassInt16:
		return value.Int16(), nil
	case variant.ClassUint16:
		return value.Uint16(), nil
	case variant.ClassInt32:
		return value.Int32(), nil
	case variant.ClassUint32:
		return value.Uint32(), nil
	case variant.ClassInt64:
		return value.Int64(), nil
	case variant.ClassUint64:
		return value.Uint64(), nil
	case variant.ClassHandle:
		return Handle(value.Int32()), nil
	case variant.ClassDouble:
		return value.Double(), nil
	case variant.ClassString:
		return value.Text(), nil
	case variant.ClassObjectPath:
		return ObjectPath(value.Text()), nil
	case variant.ClassSignature:
		return value.Signature()
	case variant.ClassVariant:
		inner, err := valueInterface(value.Unbox())
		if err != nil {
			return nil, err
		}
		return Boxed{Value: inner}, nil
	case variant.ClassMaybe:
		if value.NumChildren() == 0 {
			return nil, nil
		}
		child, err := valueInterface(value.Child(0))
		if err != nil {
			return nil, err
		}
		return &child, nil
	case variant.ClassArray:
		if data, ok := value.Bytes(); ok {
			return data, nil
		}
		if value.Type().IsDictionary() {
			return dictionaryInterface(value)
		}
		return listInterface(value.Children())
	case variant.ClassTuple:
		members, err := listInterface(value.Children())
		if err != nil {
			return nil, err
		}
		return Tuple(members), nil
	case variant.ClassDictEntry:
		key, err := valueInterface(value.Child(0))
		if err != nil {
			return nil, err
		}
		element, err := valueInterface(value.Child(1))
		if err != nil {
			return nil, err
		}
		return Entry{Key: key, Value: element}, nil
	}
	return nil, &UnsupportedTypeError{Type: value.Type().String()}
}

func listInterface(children []variant.Value) ([]any, error) {
	list := make([]any, len(children))
	for index, child := range children {
		converted, err := valueInterface(child)
		if err != nil {
			return nil, err
		}
		list[index] = converted
	}
	return list, nil
}

func dictionaryInterface(value variant.Value) (Map, error) {
	entry, _ := value.Type().Element()
	valueType, _ := entry.Value()
	unbox := valueType == signature.Variant

	result := make(Map, 0, value.NumChildren())
	for _, child := range value.Children() {
		key, err := valueInterface(child.Child(0))
		if err != nil {
			return nil, err
		}
		element := child.Child(1)
		if unbox {
			element = element.Unbox()
		}
		converted, err := valueInterface(element)
		if err != nil {
			return nil, err
		}
		result = append(result, Entry{Key: key, Value: converted})
	}
	return result, nil
}
