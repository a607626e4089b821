// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding"
	"reflect"

	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

var (
	valueType          = reflect.TypeFor[variant.Value]()
	signatureType      = reflect.TypeFor[signature.Type]()
	anyType            = reflect.TypeFor[Any]()
	boxedType          = reflect.TypeFor[Boxed]()
	objectPathType     = reflect.TypeFor[ObjectPath]()
	handleType         = reflect.TypeFor[Handle]()
	dictType           = reflect.TypeFor[Dict]()
	mapType            = reflect.TypeFor[Map]()
	tupleType          = reflect.TypeFor[Tuple]()
	entryType          = reflect.TypeFor[Entry]()
	marshalerType      = reflect.TypeFor[Marshaler]()
	unmarshalerType    = reflect.TypeFor[Unmarshaler]()
	enumType           = reflect.TypeFor[Enum]()
	textMarshalerType  = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalType  = reflect.TypeFor[encoding.TextUnmarshaler]()
	bytesType          = reflect.TypeFor[[]byte]()
	byteType           = reflect.TypeFor[byte]()
	emptyInterfaceType = reflect.TypeFor[any]()
)

// SignatureOf returns the variant type that values of the Go type t
// encode to in machine (non-human-readable) mode, when it can be
// derived from t alone. Interface types and types that always encode
// boxed derive "v". It reports false for types whose encoding depends
// on the value: [Marshaler] implementations, [Map], [Tuple] and the
// envelope types.
func SignatureOf(t reflect.Type) (signature.Type, bool) {
	return staticSignature(t, false)
}

func staticSignature(t reflect.Type, human bool) (signature.Type, bool) {
	if t == nil {
		return signature.Type{}, false
	}
	switch t {
	case valueType, anyType, boxedType:
		return signature.Variant, true
	case signatureType:
		return signature.Signature, true
	case objectPathType:
		return signature.ObjectPath, true
	case handleType:
		return signature.Handle, true
	case dictType:
		return signature.VarDict, true
	case bytesType:
		return signature.ByteString, true
	case mapType, tupleType, entryType:
		return signature.Type{}, false
	}
	if t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType) {
		return signature.Type{}, false
	}
	if isIntegerKind(t.Kind()) && t.Implements(enumType) {
		if human {
			return signature.String, true
		}
		return signature.Uint32, true
	}
	if t.Implements(textMarshalerType) {
		return signature.String, true
	}

	switch t.Kind() {
	case reflect.Bool:
		return signature.Boolean, true
	case reflect.Uint8:
		return signature.Byte, true
	case reflect.Int8, reflect.Int16:
		return signature.Int16, true
	case reflect.Uint16:
		return signature.Uint16, true
	case reflect.Int32:
		return signature.Int32, true
	case reflect.Uint32:
		return signature.Uint32, true
	case reflect.Int, reflect.Int64:
		return signature.Int64, true
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return signature.Uint64, true
	case reflect.Float32, reflect.Float64:
		return signature.Double, true
	case reflect.String:
		return signature.String, true
	case reflect.Interface:
		return signature.Variant, true
	case reflect.Pointer:
		element, ok := staticSignature(t.Elem(), human)
		if !ok {
			element = signature.Variant
		}
		return signature.MaybeOf(element), true
	case reflect.Slice, reflect.Array:
		element, ok := staticSignature(t.Elem(), human)
		if !ok {
			return signature.Type{}, false
		}
		return signature.ArrayOf(element), true
	case reflect.Map:
		key, ok := staticSignature(t.Key(), human)
		if !ok || !key.IsBasic() {
			return signature.Type{}, false
		}
		value, ok := staticSignature(t.Elem(), human)
		if !ok {
			return signature.Type{}, false
		}
		entry, _ := signature.DictEntryOf(key, value)
		return signature.ArrayOf(entry), true
	case reflect.Struct:
		return staticStructSignature(t, human)
	}
	return signature.Type{}, false
}

func staticStructSignature(t reflect.Type, human bool) (signature.Type, bool) {
	fields := cachedFields(t)
	members := make([]signature.Type, len(fields))
	for index, field := range fields {
		member, ok := staticSignature(field.typ, human)
		if !ok {
			return signature.Type{}, false
		}
		members[index] = member
	}
	if !human {
		return signature.TupleOf(members...), true
	}
	value := signature.Variant
	if len(members) > 0 {
		value = members[0]
		for _, member := range members[1:] {
			if member != value {
				value = signature.Variant
				break
			}
		}
	}
	entry, _ := signature.DictEntryOf(signature.String, value)
	return signature.ArrayOf(entry), true
}

func isIntegerKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}
