// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

// Unmarshaler is implemented by types that read themselves from a
// variant value. The value is passed as found, boxed or not.
type Unmarshaler interface {
	UnmarshalVariant(value variant.Value) error
}

// Decoder reads variant values into Go values.
type Decoder struct {
	expected signature.Type
	human    bool
}

// NewDecoder returns a decoder configured by opts. An expected type
// set with [WithType] is checked against every decoded value.
func NewDecoder(opts ...Option) *Decoder {
	configured := newOptions(opts)
	return &Decoder{expected: configured.expected, human: configured.humanReadable}
}

// Unmarshal reads value into the Go value pointed to by target.
func Unmarshal(value variant.Value, target any, opts ...Option) error {
	return NewDecoder(opts...).Decode(value, target)
}

// HumanReadable reports whether the decoder was configured for a
// human-readable transport.
func (d *Decoder) HumanReadable() bool { return d.human }

// Decode reads value into the Go value pointed to by target.
func (d *Decoder) Decode(value variant.Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		if target == nil {
			return &InvalidTargetError{}
		}
		return &InvalidTargetError{Type: rv.Type().String()}
	}
	if !value.IsValid() {
		return &UnsupportedTypeError{Type: "invalid variant.Value"}
	}
	if !d.expected.IsZero() && !value.Type().IsSubtypeOf(d.expected) {
		return &MismatchError{Actual: value.Type().String(), Expected: d.expected.String()}
	}
	return d.decode(value, rv.Elem())
}

func (d *Decoder) decode(value variant.Value, rv reflect.Value) error {
	t := rv.Type()

	switch t {
	case valueType:
		rv.Set(reflect.ValueOf(value))
		return nil
	case anyType:
		rv.Set(reflect.ValueOf(NewAny(value)))
		return nil
	case boxedType:
		if value.Class() != variant.ClassVariant {
			return &MismatchError{Actual: value.Type().String(), Expected: "v"}
		}
		inner, err := valueInterface(value.Unbox())
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(Boxed{Value: inner}))
		return nil
	}

	if rv.CanAddr() && reflect.PointerTo(t).Implements(unmarshalerType) {
		return rv.Addr().Interface().(Unmarshaler).UnmarshalVariant(value)
	}

	if t.Kind() == reflect.Interface {
		return d.decodeInterface(unboxAll(value), rv)
	}

	if t.Kind() == reflect.Pointer && isWrapperType(t.Elem()) {
		target := reflect.New(t.Elem())
		if err := d.decode(value, target.Elem()); err != nil {
			return err
		}
		rv.Set(target)
		return nil
	}

	value = unboxAll(value)

	switch t {
	case mapType:
		return d.decodeOrderedMap(value, rv)
	case entryType:
		return d.decodeEntry(value, rv)
	}

	if isIntegerKind(t.Kind()) && t.Implements(enumType) && value.Class() == variant.ClassString {
		return decodeEnumName(value.Text(), rv)
	}
	if value.Class().IsStringLike() && rv.CanAddr() && reflect.PointerTo(t).Implements(textUnmarshalType) {
		if err := rv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(value.Text())); err != nil {
			return fmt.Errorf("unmarshaling %s from text: %w", t, err)
		}
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return decodeBool(value, rv)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decodeInt(value, rv)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return decodeUint(value, rv)
	case reflect.Float32, reflect.Float64:
		if value.Class() != variant.ClassDouble {
			return mismatch(value, t)
		}
		rv.SetFloat(value.Double())
		return nil
	case reflect.String:
		if !value.Class().IsStringLike() {
			return &StringError{Type: value.Type().String()}
		}
		rv.SetString(value.Text())
		return nil
	case reflect.Pointer:
		return d.decodeMaybe(value, rv)
	case reflect.Slice:
		return d.decodeSlice(value, rv)
	case reflect.Array:
		return d.decodeArray(value, rv)
	case reflect.Map:
		return d.decodeGoMap(value, rv)
	case reflect.Struct:
		return d.decodeStruct(value, rv)
	}
	return &UnsupportedTypeError{Type: t.String()}
}

// unboxAll strips every level of boxing.
func unboxAll(value variant.Value) variant.Value {
	for value.Class() == variant.ClassVariant {
		value = value.Unbox()
	}
	return value
}

// mismatch reports a source value that the Go type t cannot hold.
func mismatch(value variant.Value, t reflect.Type) error {
	expected := t.String()
	if derived, ok := SignatureOf(t); ok {
		expected = derived.String()
	}
	return &MismatchError{Actual: value.Type().String(), Expected: expected}
}

func (d *Decoder) decodeInterface(value variant.Value, rv reflect.Value) error {
	converted, err := valueInterface(value)
	if err != nil {
		return err
	}
	if converted == nil {
		rv.SetZero()
		return nil
	}
	result := reflect.ValueOf(converted)
	if !result.Type().AssignableTo(rv.Type()) {
		return mismatch(value, rv.Type())
	}
	rv.Set(result)
	return nil
}

func decodeBool(value variant.Value, rv reflect.Value) error {
	signed, unsigned, isSigned, ok := value.Integer()
	if !ok {
		return mismatch(value, rv.Type())
	}
	switch {
	case isSigned && (signed == 0 || signed == 1):
		rv.SetBool(signed == 1)
	case !isSigned && unsigned <= 1:
		rv.SetBool(unsigned == 1)
	default:
		return &CoercionError{Value: value.Print(false), Target: rv.Type().String()}
	}
	return nil
}

func decodeInt(value variant.Value, rv reflect.Value) error {
	signed, unsigned, isSigned, ok := value.Integer()
	if !ok {
		return mismatch(value, rv.Type())
	}
	if !isSigned {
		if unsigned > math.MaxInt64 {
			return &CoercionError{Value: strconv.FormatUint(unsigned, 10), Target: rv.Type().String()}
		}
		signed = int64(unsigned)
	}
	if rv.OverflowInt(signed) {
		return &CoercionError{Value: strconv.FormatInt(signed, 10), Target: rv.Type().String()}
	}
	rv.SetInt(signed)
	return nil
}

func decodeUint(value variant.Value, rv reflect.Value) error {
	signed, unsigned, isSigned, ok := value.Integer()
	if !ok {
		return mismatch(value, rv.Type())
	}
	if isSigned {
		if signed < 0 {
			return &CoercionError{Value: strconv.FormatInt(signed, 10), Target: rv.Type().String()}
		}
		unsigned = uint64(signed)
	}
	if rv.OverflowUint(unsigned) {
		return &CoercionError{Value: strconv.FormatUint(unsigned, 10), Target: rv.Type().String()}
	}
	rv.SetUint(unsigned)
	return nil
}

func decodeEnumName(name string, rv reflect.Value) error {
	names := reflect.Zero(rv.Type()).Interface().(Enum).EnumNames()
	for index, candidate := range names {
		if candidate != name {
			continue
		}
		if rv.CanInt() {
			rv.SetInt(int64(index))
		} else {
			rv.SetUint(uint64(index))
		}
		return nil
	}
	return &CoercionError{Value: strconv.Quote(name), Target: rv.Type().String()}
}

func (d *Decoder) decodeMaybe(value variant.Value, rv reflect.Value) error {
	if value.Class() != variant.ClassMaybe {
		return mismatch(value, rv.Type())
	}
	if value.NumChildren() == 0 {
		rv.SetZero()
		return nil
	}
	target := reflect.New(rv.Type().Elem())
	if err := d.decode(value.Child(0), target.Elem()); err != nil {
		return err
	}
	rv.Set(target)
	return nil
}

// isSequence reports whether value can feed a sequence read.
func isSequence(value variant.Value) bool {
	switch value.Class() {
	case variant.ClassArray, variant.ClassTuple, variant.ClassDictEntry:
		return true
	}
	return false
}

func (d *Decoder) decodeSlice(value variant.Value, rv reflect.Value) error {
	if data, ok := value.Bytes(); ok && rv.Type().Elem() == byteType {
		rv.SetBytes(data)
		return nil
	}
	if !isSequence(value) {
		return mismatch(value, rv.Type())
	}
	count := value.NumChildren()
	slice := reflect.MakeSlice(rv.Type(), count, count)
	for index := range count {
		if err := d.decode(value.Child(index), slice.Index(index)); err != nil {
			return fmt.Errorf("element %d: %w", index, err)
		}
	}
	rv.Set(slice)
	return nil
}

func (d *Decoder) decodeArray(value variant.Value, rv reflect.Value) error {
	if !isSequence(value) {
		return mismatch(value, rv.Type())
	}
	if value.NumChildren() != rv.Len() {
		return &LengthMismatchError{Actual: value.NumChildren(), Expected: rv.Len()}
	}
	for index := range rv.Len() {
		if err := d.decode(value.Child(index), rv.Index(index)); err != nil {
			return fmt.Errorf("element %d: %w", index, err)
		}
	}
	return nil
}

// entries returns the dict entries of a dictionary array. An empty
// array of any element type reads as an empty dictionary.
func entries(value variant.Value) ([]variant.Value, bool) {
	if value.Class() != variant.ClassArray {
		return nil, false
	}
	if value.NumChildren() == 0 {
		return nil, true
	}
	if !value.Type().IsDictionary() {
		return nil, false
	}
	return value.Children(), true
}

func (d *Decoder) decodeGoMap(value variant.Value, rv reflect.Value) error {
	list, ok := entries(value)
	if !ok {
		return mismatch(value, rv.Type())
	}
	t := rv.Type()
	result := reflect.MakeMapWithSize(t, len(list))
	for _, entry := range list {
		key := reflect.New(t.Key()).Elem()
		if err := d.decode(entry.Child(0), key); err != nil {
			return fmt.Errorf("key %s: %w", entry.Child(0).Print(false), err)
		}
		element := reflect.New(t.Elem()).Elem()
		if err := d.decode(entry.Child(1), element); err != nil {
			return fmt.Errorf("key %s: %w", entry.Child(0).Print(false), err)
		}
		result.SetMapIndex(key, element)
	}
	rv.Set(result)
	return nil
}

func (d *Decoder) decodeOrderedMap(value variant.Value, rv reflect.Value) error {
	list, ok := entries(value)
	if !ok {
		return mismatch(value, rv.Type())
	}
	result := make(Map, 0, len(list))
	for _, entry := range list {
		var pairValue Entry
		if err := d.decodeEntry(entry, reflect.ValueOf(&pairValue).Elem()); err != nil {
			return err
		}
		result = append(result, pairValue)
	}
	rv.Set(reflect.ValueOf(result))
	return nil
}

func (d *Decoder) decodeEntry(value variant.Value, rv reflect.Value) error {
	if value.Class() != variant.ClassDictEntry {
		return mismatch(value, rv.Type())
	}
	key, err := valueInterface(value.Child(0))
	if err != nil {
		return err
	}
	var element any
	if err := d.decodeInterface(unboxAll(value.Child(1)), reflect.ValueOf(&element).Elem()); err != nil {
		return fmt.Errorf("key %s: %w", value.Child(0).Print(false), err)
	}
	rv.Set(reflect.ValueOf(Entry{Key: key, Value: element}))
	return nil
}

func (d *Decoder) decodeStruct(value variant.Value, rv reflect.Value) error {
	fields := cachedFields(rv.Type())

	if len(fields) == 0 {
		if value.Class() == variant.ClassTuple && value.NumChildren() == 0 ||
			value.Class() == variant.ClassArray && value.NumChildren() == 0 {
			return nil
		}
		return mismatch(value, rv.Type())
	}

	switch value.Class() {
	case variant.ClassTuple:
		if value.NumChildren() != len(fields) {
			return &LengthMismatchError{Actual: value.NumChildren(), Expected: len(fields)}
		}
		for index, field := range fields {
			if err := d.decode(value.Child(index), fieldByIndex(rv, field.index)); err != nil {
				return fmt.Errorf("field %q: %w", field.name, err)
			}
		}
		return nil
	case variant.ClassArray:
		list, ok := entries(value)
		if !ok {
			break
		}
		for _, entry := range list {
			field, ok := lookupField(fields, entry.Child(0))
			if !ok {
				continue
			}
			if err := d.decode(entry.Child(1), fieldByIndex(rv, field.index)); err != nil {
				return fmt.Errorf("field %q: %w", field.name, err)
			}
		}
		return nil
	}
	return mismatch(value, rv.Type())
}

// lookupField resolves a dictionary key to a field, by name for
// string keys and by position for integer keys.
func lookupField(fields []structField, key variant.Value) (structField, bool) {
	if key.Class().IsStringLike() {
		for _, field := range fields {
			if field.name == key.Text() {
				return field, true
			}
		}
		return structField{}, false
	}
	signed, unsigned, isSigned, ok := key.Integer()
	if !ok || key.Class() == variant.ClassBoolean {
		return structField{}, false
	}
	if isSigned {
		if signed < 0 {
			return structField{}, false
		}
		unsigned = uint64(signed)
	}
	if unsigned >= uint64(len(fields)) {
		return structField{}, false
	}
	return fields[unsigned], true
}

// fieldByIndex walks index like reflect.Value.FieldByIndex. The path
// never crosses a pointer because only embedded structs by value are
// flattened.
func fieldByIndex(rv reflect.Value, index []int) reflect.Value {
	for _, step := range index {
		rv = rv.Field(step)
	}
	return rv
}
