// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"cmp"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"

	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

// Marshaler is implemented by types that build their own variant
// form. The encoder passed in carries the expected type and mode at
// the current position, and can encode child values.
type Marshaler interface {
	MarshalVariant(e *Encoder) (variant.Value, error)
}

// Enum is implemented by integer types whose values are bare
// discriminants. EnumNames returns the symbolic name of every
// discriminant, indexed by its integer value.
type Enum interface {
	EnumNames() []string
}

// Encoder converts Go values to variant values.
type Encoder struct {
	expected signature.Type
	human    bool
}

// NewEncoder returns an encoder configured by opts.
func NewEncoder(opts ...Option) *Encoder {
	configured := newOptions(opts)
	return &Encoder{expected: configured.expected, human: configured.humanReadable}
}

// Marshal encodes value. See the package documentation for the
// inference rules.
func Marshal(value any, opts ...Option) (variant.Value, error) {
	return NewEncoder(opts...).Encode(value)
}

// Expected returns the expected type at this position, or the zero
// Type when the encoder infers.
func (e *Encoder) Expected() signature.Type { return e.expected }

// HumanReadable reports whether the encoder produces the
// human-readable representation.
func (e *Encoder) HumanReadable() bool { return e.human }

// Encode encodes value against the encoder's expected type.
func (e *Encoder) Encode(value any) (variant.Value, error) {
	return e.encode(reflect.ValueOf(value), e.expected)
}

// EncodeAs encodes value against expected instead of the encoder's
// own expected type. A zero expected type infers.
func (e *Encoder) EncodeAs(value any, expected signature.Type) (variant.Value, error) {
	return e.encode(reflect.ValueOf(value), expected)
}

func (e *Encoder) at(expected signature.Type) *Encoder {
	if expected == e.expected {
		return e
	}
	return &Encoder{expected: expected, human: e.human}
}

// encode builds the value and enforces the expected type: exactly "v"
// boxes, anything else must be matched by the produced type.
func (e *Encoder) encode(rv reflect.Value, expected signature.Type) (variant.Value, error) {
	if expected == signature.Variant {
		value, err := e.build(rv, signature.Type{})
		if err != nil {
			return variant.Value{}, err
		}
		if value.Class() == variant.ClassVariant {
			return value, nil
		}
		return variant.NewVariant(value), nil
	}
	value, err := e.build(rv, expected)
	if err != nil {
		return variant.Value{}, err
	}
	if !expected.IsZero() && !value.Type().IsSubtypeOf(expected) {
		return variant.Value{}, &MismatchError{Actual: value.Type().String(), Expected: expected.String()}
	}
	return value, nil
}

var numberType = reflect.TypeFor[json.Number]()

func (e *Encoder) build(rv reflect.Value, expected signature.Type) (variant.Value, error) {
	if !rv.IsValid() {
		return e.nothing(nil, expected)
	}
	t := rv.Type()

	switch t.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return e.nothing(t, expected)
		}
		return e.build(rv.Elem(), expected)
	case reflect.Pointer:
		if rv.IsNil() {
			return e.nothing(t, expected)
		}
		if isWrapperType(t.Elem()) {
			return e.build(rv.Elem(), expected)
		}
		return e.buildJust(rv.Elem(), expected)
	}

	switch t {
	case valueType:
		value := rv.Interface().(variant.Value)
		if !value.IsValid() {
			return variant.Value{}, &UnsupportedTypeError{Type: "invalid variant.Value"}
		}
		return value, nil
	case signatureType:
		sig := rv.Interface().(signature.Type)
		if sig.IsZero() {
			return variant.Value{}, &UnsupportedTypeError{Type: "zero signature.Type"}
		}
		return variant.NewSignature(sig), nil
	case objectPathType:
		return variant.NewObjectPath(rv.String())
	case handleType:
		return variant.NewHandle(int32(rv.Int())), nil
	case boxedType:
		inner, err := e.encode(reflect.ValueOf(rv.Interface().(Boxed).Value), signature.Type{})
		if err != nil {
			return variant.Value{}, err
		}
		return variant.NewVariant(inner), nil
	case mapType:
		return e.buildMap(mapPairs(rv.Interface().(Map)), expected, emptyInterfaceType, emptyInterfaceType)
	case tupleType:
		if expected.IsZero() || expected == signature.Any {
			return e.buildSequence(rv, signature.AnyTuple)
		}
	case entryType:
		return e.buildEntry(rv.Interface().(Entry), expected)
	case numberType:
		return numberLiteral(rv.String(), expected)
	}

	if t.Implements(marshalerType) {
		return rv.Interface().(Marshaler).MarshalVariant(e.at(expected))
	}
	if rv.CanAddr() && reflect.PointerTo(t).Implements(marshalerType) {
		return rv.Addr().Interface().(Marshaler).MarshalVariant(e.at(expected))
	}
	if isIntegerKind(t.Kind()) && t.Implements(enumType) {
		return e.buildEnum(rv, expected)
	}
	if t.Implements(textMarshalerType) {
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return variant.Value{}, fmt.Errorf("marshaling %s as text: %w", t, err)
		}
		return stringValue(string(text), expected)
	}

	switch t.Kind() {
	case reflect.Bool:
		return variant.NewBoolean(rv.Bool()), nil
	case reflect.Int8, reflect.Int16:
		return variant.NewInt16(int16(rv.Int())), nil
	case reflect.Int32:
		return variant.NewInt32(int32(rv.Int())), nil
	case reflect.Int, reflect.Int64:
		return variant.NewInt64(rv.Int()), nil
	case reflect.Uint8:
		return variant.NewByte(uint8(rv.Uint())), nil
	case reflect.Uint16:
		return variant.NewUint16(uint16(rv.Uint())), nil
	case reflect.Uint32:
		return variant.NewUint32(uint32(rv.Uint())), nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return variant.NewUint64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return variant.NewDouble(rv.Float()), nil
	case reflect.String:
		return stringValue(rv.String(), expected)
	case reflect.Slice, reflect.Array:
		return e.buildSequence(rv, expected)
	case reflect.Map:
		return e.buildGoMap(rv, expected)
	case reflect.Struct:
		return e.buildStruct(rv, expected)
	}
	return variant.Value{}, &UnsupportedTypeError{Type: t.String()}
}

// isWrapperType reports whether a pointer to t encodes as the pointed
// value rather than as a maybe.
func isWrapperType(t reflect.Type) bool {
	switch t {
	case valueType, anyType, dictType:
		return true
	}
	return false
}

// stringValue builds a string, or an object path or signature when
// the expected type asks for one.
func stringValue(text string, expected signature.Type) (variant.Value, error) {
	switch expected {
	case signature.ObjectPath:
		return variant.NewObjectPath(text)
	case signature.Signature:
		sig, err := signature.Parse(text)
		if err != nil {
			return variant.Value{}, err
		}
		return variant.NewSignature(sig), nil
	}
	if err := variant.CheckString(text); err != nil {
		return variant.Value{}, &InvalidStringError{Text: text, Err: err}
	}
	return variant.NewString(text), nil
}

// numberLiteral converts a decimal number literal to the expected
// numeric type. Without a numeric expectation, integral literals
// become int64 (uint64 when too large) and others double.
func numberLiteral(text string, expected signature.Type) (variant.Value, error) {
	coercion := func() error { return &CoercionError{Value: text, Target: expected.String()} }
	switch expected {
	case signature.Byte, signature.Uint16, signature.Uint32, signature.Uint64:
		n, err := strconv.ParseUint(text, 10, 8*expected.FixedSize())
		if err != nil {
			return variant.Value{}, coercion()
		}
		switch expected {
		case signature.Byte:
			return variant.NewByte(uint8(n)), nil
		case signature.Uint16:
			return variant.NewUint16(uint16(n)), nil
		case signature.Uint32:
			return variant.NewUint32(uint32(n)), nil
		}
		return variant.NewUint64(n), nil
	case signature.Int16, signature.Int32, signature.Int64, signature.Handle:
		n, err := strconv.ParseInt(text, 10, 8*expected.FixedSize())
		if err != nil {
			return variant.Value{}, coercion()
		}
		switch expected {
		case signature.Int16:
			return variant.NewInt16(int16(n)), nil
		case signature.Int32:
			return variant.NewInt32(int32(n)), nil
		case signature.Handle:
			return variant.NewHandle(int32(n)), nil
		}
		return variant.NewInt64(n), nil
	case signature.Double:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return variant.Value{}, coercion()
		}
		return variant.NewDouble(f), nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return variant.NewInt64(n), nil
	}
	if n, err := strconv.ParseUint(text, 10, 64); err == nil {
		return variant.NewUint64(n), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return variant.Value{}, &CoercionError{Value: text, Target: "number"}
	}
	return variant.NewDouble(f), nil
}

// nothing builds an empty maybe. The element type is taken from a
// maybe expectation, then from the static type of the nil pointer or
// interface, and is "v" otherwise.
func (e *Encoder) nothing(static reflect.Type, expected signature.Type) (variant.Value, error) {
	element := signature.Variant
	if static != nil && static.Kind() == reflect.Pointer {
		if derived, ok := staticSignature(static.Elem(), e.human); ok {
			element = derived
		}
	}
	if expected.IsMaybe() {
		pattern, _ := expected.Element()
		fallback, err := fallbackType(pattern, element, signature.Variant)
		if err != nil {
			return variant.Value{}, err
		}
		element = fallback
	}
	return variant.NewMaybe(element, nil)
}

func (e *Encoder) buildJust(rv reflect.Value, expected signature.Type) (variant.Value, error) {
	var pattern signature.Type
	if expected.IsMaybe() {
		pattern, _ = expected.Element()
	}
	child, err := e.encode(rv, pattern)
	if err != nil {
		return variant.Value{}, err
	}
	return variant.NewMaybe(child.Type(), &child)
}

// fallbackType picks the element type of an empty container: the
// pattern itself when definite, else the first candidate the pattern
// matches.
func fallbackType(pattern signature.Type, candidates ...signature.Type) (signature.Type, error) {
	if pattern.IsDefinite() {
		return pattern, nil
	}
	for _, candidate := range candidates {
		if candidate.IsZero() {
			continue
		}
		if pattern.IsZero() || candidate.IsSubtypeOf(pattern) {
			return candidate, nil
		}
	}
	return signature.Type{}, &MismatchError{Actual: "empty container", Expected: pattern.String()}
}

func (e *Encoder) buildEnum(rv reflect.Value, expected signature.Type) (variant.Value, error) {
	var index uint64
	if rv.CanInt() {
		signed := rv.Int()
		if signed < 0 {
			return variant.Value{}, &CoercionError{Value: strconv.FormatInt(signed, 10), Target: rv.Type().String()}
		}
		index = uint64(signed)
	} else {
		index = rv.Uint()
	}
	if (e.human && expected != signature.Uint32) || expected == signature.String {
		names := rv.Interface().(Enum).EnumNames()
		if index >= uint64(len(names)) {
			return variant.Value{}, &CoercionError{Value: strconv.FormatUint(index, 10), Target: rv.Type().String()}
		}
		return variant.NewString(names[index]), nil
	}
	if index > math.MaxUint32 {
		return variant.Value{}, &CoercionError{Value: strconv.FormatUint(index, 10), Target: "u"}
	}
	return variant.NewUint32(uint32(index)), nil
}

func (e *Encoder) buildSequence(rv reflect.Value, expected signature.Type) (variant.Value, error) {
	t := rv.Type()
	count := rv.Len()

	if isPlainByte(t.Elem()) && bulkBytes(expected) {
		data := make([]byte, count)
		if t.Kind() == reflect.Slice {
			copy(data, rv.Bytes())
		} else {
			for index := range count {
				data[index] = uint8(rv.Index(index).Uint())
			}
		}
		return variant.NewByteArray(data), nil
	}

	switch {
	case expected == signature.AnyTuple:
		children, err := e.encodeElements(rv, func(int) signature.Type { return signature.Type{} })
		if err != nil {
			return variant.Value{}, err
		}
		return variant.NewTuple(children...), nil

	case expected.IsTuple() || expected.IsDictEntry():
		items, _ := expected.Items()
		if count != len(items) {
			return variant.Value{}, &LengthMismatchError{Actual: count, Expected: len(items)}
		}
		children, err := e.encodeElements(rv, func(index int) signature.Type { return items[index] })
		if err != nil {
			return variant.Value{}, err
		}
		if expected.IsDictEntry() {
			return variant.NewDictEntry(children[0], children[1])
		}
		return variant.NewTuple(children...), nil

	case expected.IsArray():
		element, _ := expected.Element()
		children, err := e.encodeElements(rv, func(int) signature.Type { return element })
		if err != nil {
			return variant.Value{}, err
		}
		if len(children) == 0 {
			static, _ := staticSignature(t.Elem(), e.human)
			fallback, err := fallbackType(element, static, signature.Variant, signature.String)
			if err != nil {
				return variant.Value{}, err
			}
			return variant.NewArray(fallback, nil)
		}
		return toArray(children, signature.Variant)
	}

	children, err := e.encodeElements(rv, func(int) signature.Type { return signature.Type{} })
	if err != nil {
		return variant.Value{}, err
	}
	static, ok := staticSignature(t.Elem(), e.human)
	if !ok {
		static = signature.Variant
	}
	return toTupleOrArray(children, static)
}

// bulkBytes reports whether a byte sequence under expected encodes as
// a byte array in one step. Other array elements, tuples and dict
// entries encode byte by byte.
func bulkBytes(expected signature.Type) bool {
	switch {
	case expected.IsTuple(), expected.IsDictEntry():
		return false
	case expected.IsArray():
		element, _ := expected.Element()
		return signature.Byte.IsSubtypeOf(element)
	}
	return true
}

func (e *Encoder) encodeElements(rv reflect.Value, expectedAt func(int) signature.Type) ([]variant.Value, error) {
	children := make([]variant.Value, rv.Len())
	for index := range children {
		child, err := e.encode(rv.Index(index), expectedAt(index))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", index, err)
		}
		children[index] = child
	}
	return children, nil
}

// isPlainByte reports whether t is a byte type with no encoding hooks
// of its own, so sequences of it take the byte-array path.
func isPlainByte(t reflect.Type) bool {
	if t.Kind() != reflect.Uint8 {
		return false
	}
	return !t.Implements(marshalerType) && !t.Implements(enumType) && !t.Implements(textMarshalerType)
}

type pair struct {
	key   reflect.Value
	value reflect.Value
}

func mapPairs(m Map) []pair {
	pairs := make([]pair, len(m))
	for index, entry := range m {
		pairs[index] = pair{key: reflect.ValueOf(entry.Key), value: reflect.ValueOf(entry.Value)}
	}
	return pairs
}

// keyLabel formats a map key for error messages.
func keyLabel(key reflect.Value) string {
	if !key.IsValid() {
		return "nil"
	}
	if key.Kind() == reflect.String {
		return strconv.Quote(key.String())
	}
	return fmt.Sprint(key.Interface())
}

func (e *Encoder) buildGoMap(rv reflect.Value, expected signature.Type) (variant.Value, error) {
	keys := rv.MapKeys()
	slices.SortFunc(keys, compareKeys)
	pairs := make([]pair, len(keys))
	for index, key := range keys {
		pairs[index] = pair{key: key, value: rv.MapIndex(key)}
	}
	return e.buildMap(pairs, expected, rv.Type().Key(), rv.Type().Elem())
}

// compareKeys orders map keys of the same basic kind.
func compareKeys(a, b reflect.Value) int {
	switch {
	case a.CanInt():
		return cmp.Compare(a.Int(), b.Int())
	case a.CanUint():
		return cmp.Compare(a.Uint(), b.Uint())
	case a.CanFloat():
		return cmp.Compare(a.Float(), b.Float())
	case a.Kind() == reflect.String:
		return cmp.Compare(a.String(), b.String())
	case a.Kind() == reflect.Bool:
		if a.Bool() == b.Bool() {
			return 0
		}
		if b.Bool() {
			return -1
		}
		return 1
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

// buildMap encodes key/value pairs into a dictionary array. Keys must
// share one basic type; values that disagree are boxed.
func (e *Encoder) buildMap(pairs []pair, expected signature.Type, staticKey, staticValue reflect.Type) (variant.Value, error) {
	var keyPattern, valuePattern signature.Type
	if expected.IsDictionary() {
		entry, _ := expected.Element()
		keyPattern, _ = entry.Key()
		valuePattern, _ = entry.Value()
	}

	keys := make([]variant.Value, len(pairs))
	values := make([]variant.Value, len(pairs))
	for index, p := range pairs {
		key, err := e.encode(p.key, keyPattern)
		if err != nil {
			return variant.Value{}, fmt.Errorf("key %s: %w", keyLabel(p.key), err)
		}
		if !key.Type().IsBasic() {
			return variant.Value{}, &UnsupportedTypeError{Type: "dictionary key of type " + key.Type().String()}
		}
		value, err := e.encode(p.value, valuePattern)
		if err != nil {
			return variant.Value{}, fmt.Errorf("key %s: %w", keyLabel(p.key), err)
		}
		keys[index], values[index] = key, value
	}
	return e.dictionary(keys, values, keyPattern, valuePattern, staticKey, staticValue)
}

func (e *Encoder) dictionary(keys, values []variant.Value, keyPattern, valuePattern signature.Type, staticKey, staticValue reflect.Type) (variant.Value, error) {
	var keyType, valueType signature.Type
	var err error

	unifiedKeys := Unify(keys)
	switch {
	case unifiedKeys.IsInconsistent():
		return variant.Value{}, ErrInconsistentTypes
	case unifiedKeys.IsEmpty():
		static, _ := staticSignature(staticKey, e.human)
		if !static.IsBasic() {
			static = signature.Type{}
		}
		keyType, err = fallbackType(keyPattern, static, signature.String)
		if err != nil {
			return variant.Value{}, err
		}
	default:
		keyType, _ = unifiedKeys.Type()
	}

	unifiedValues := Unify(values)
	switch {
	case unifiedValues.IsInconsistent():
		valueType = signature.Variant
		values = boxAll(values)
	case unifiedValues.IsEmpty():
		static, _ := staticSignature(staticValue, e.human)
		valueType, err = fallbackType(valuePattern, static, signature.Variant)
		if err != nil {
			return variant.Value{}, err
		}
	default:
		valueType, _ = unifiedValues.Type()
	}

	entryType, err := signature.DictEntryOf(keyType, valueType)
	if err != nil {
		return variant.Value{}, err
	}
	entries := make([]variant.Value, len(keys))
	for index := range keys {
		entry, err := variant.NewDictEntry(keys[index], values[index])
		if err != nil {
			return variant.Value{}, err
		}
		entries[index] = entry
	}
	return variant.NewArray(entryType, entries)
}

func (e *Encoder) buildEntry(entry Entry, expected signature.Type) (variant.Value, error) {
	var keyPattern, valuePattern signature.Type
	if expected.IsDictEntry() {
		keyPattern, _ = expected.Key()
		valuePattern, _ = expected.Value()
	}
	key, err := e.encode(reflect.ValueOf(entry.Key), keyPattern)
	if err != nil {
		return variant.Value{}, fmt.Errorf("entry key: %w", err)
	}
	value, err := e.encode(reflect.ValueOf(entry.Value), valuePattern)
	if err != nil {
		return variant.Value{}, fmt.Errorf("entry value: %w", err)
	}
	return variant.NewDictEntry(key, value)
}

func (e *Encoder) buildStruct(rv reflect.Value, expected signature.Type) (variant.Value, error) {
	fields := cachedFields(rv.Type())
	asDictionary := expected.IsDictionary() || (e.human && !expected.IsTuple() && len(fields) > 0)
	if asDictionary {
		var keyPattern, valuePattern signature.Type
		if expected.IsDictionary() {
			entry, _ := expected.Element()
			keyPattern, _ = entry.Key()
			valuePattern, _ = entry.Value()
		}
		keys := make([]variant.Value, len(fields))
		values := make([]variant.Value, len(fields))
		for index, field := range fields {
			key, err := stringValue(field.name, keyPattern)
			if err != nil {
				return variant.Value{}, fmt.Errorf("field %q: %w", field.name, err)
			}
			if !keyPattern.IsZero() && !key.Type().IsSubtypeOf(keyPattern) {
				return variant.Value{}, &MismatchError{Actual: key.Type().String(), Expected: keyPattern.String()}
			}
			value, err := e.encode(rv.FieldByIndex(field.index), valuePattern)
			if err != nil {
				return variant.Value{}, fmt.Errorf("field %q: %w", field.name, err)
			}
			keys[index], values[index] = key, value
		}
		return e.dictionary(keys, values, keyPattern, valuePattern, nil, nil)
	}

	var items []signature.Type
	if expected.IsTuple() && expected != signature.AnyTuple {
		items, _ = expected.Items()
		if len(items) != len(fields) {
			return variant.Value{}, &LengthMismatchError{Actual: len(fields), Expected: len(items)}
		}
	}
	children := make([]variant.Value, len(fields))
	for index, field := range fields {
		var member signature.Type
		if items != nil {
			member = items[index]
		}
		child, err := e.encode(rv.FieldByIndex(field.index), member)
		if err != nil {
			return variant.Value{}, fmt.Errorf("field %q: %w", field.name, err)
		}
		children[index] = child
	}
	return variant.NewTuple(children...), nil
}
