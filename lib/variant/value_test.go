// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"errors"
	"math"
	"testing"

	"github.com/bureau-foundation/gvariant/lib/signature"
)

func mustArray(t *testing.T, element string, children ...Value) Value {
	t.Helper()
	value, err := NewArray(signature.MustParse(element), children)
	if err != nil {
		t.Fatalf("NewArray(%q): %v", element, err)
	}
	return value
}

func mustEntry(t *testing.T, key, value Value) Value {
	t.Helper()
	entry, err := NewDictEntry(key, value)
	if err != nil {
		t.Fatalf("NewDictEntry: %v", err)
	}
	return entry
}

func mustMaybe(t *testing.T, element string, child *Value) Value {
	t.Helper()
	value, err := NewMaybe(signature.MustParse(element), child)
	if err != nil {
		t.Fatalf("NewMaybe(%q): %v", element, err)
	}
	return value
}

func TestScalarAccessors(t *testing.T) {
	if got := NewBoolean(true); got.Class() != ClassBoolean || !got.Bool() || got.Type() != signature.Boolean {
		t.Errorf("NewBoolean(true) = %v (%s)", got, got.Class())
	}
	if got := NewInt16(-7).Int16(); got != -7 {
		t.Errorf("Int16() = %d, want -7", got)
	}
	if got := NewInt64(math.MinInt64).Int64(); got != math.MinInt64 {
		t.Errorf("Int64() = %d, want MinInt64", got)
	}
	if got := NewUint64(math.MaxUint64).Uint64(); got != math.MaxUint64 {
		t.Errorf("Uint64() = %d, want MaxUint64", got)
	}
	if got := NewDouble(2.5).Double(); got != 2.5 {
		t.Errorf("Double() = %v, want 2.5", got)
	}
	if got := NewString("hello").Text(); got != "hello" {
		t.Errorf("Text() = %q, want hello", got)
	}

	signed, _, isSigned, ok := NewInt32(-3).Integer()
	if !ok || !isSigned || signed != -3 {
		t.Errorf("Integer() of int32 -3 = (%d, %v, %v)", signed, isSigned, ok)
	}
	_, unsigned, isSigned, ok := NewBoolean(true).Integer()
	if !ok || isSigned || unsigned != 1 {
		t.Errorf("Integer() of true = (%d, %v, %v)", unsigned, isSigned, ok)
	}
	if _, _, _, ok := NewString("x").Integer(); ok {
		t.Error("Integer() of string reported ok")
	}
}

func TestCheckString(t *testing.T) {
	for text, valid := range map[string]bool{
		"":             true,
		"plain":        true,
		"caf\u00e9":    true,
		"a\xffb":       false,
		"embedded\x00": false,
	} {
		err := CheckString(text)
		if (err == nil) != valid {
			t.Errorf("CheckString(%q) = %v, want valid=%v", text, err, valid)
		}
		if err != nil && !errors.Is(err, ErrInvalidString) {
			t.Errorf("CheckString(%q) = %v, want ErrInvalidString", text, err)
		}
	}
}

func TestObjectPathValidation(t *testing.T) {
	for path, valid := range map[string]bool{
		"/":              true,
		"/org/gtk/Demo":  true,
		"/a_b/c1":        true,
		"":               false,
		"org":            false,
		"/trailing/":     false,
		"/double//slash": false,
		"/bad-char":      false,
	} {
		_, err := NewObjectPath(path)
		if (err == nil) != valid {
			t.Errorf("NewObjectPath(%q) error = %v, want valid=%v", path, err, valid)
		}
	}
}

func TestArrayRejectsMixedTypes(t *testing.T) {
	_, err := NewArray(signature.Int32, []Value{NewInt32(1), NewUint32(2)})
	if err == nil {
		t.Fatal("NewArray accepted a uint32 child in an array of int32")
	}
	_, err = NewArray(signature.Any, nil)
	if err == nil {
		t.Fatal("NewArray accepted an indefinite element type")
	}
}

func TestMaybeRejectsWrongChild(t *testing.T) {
	child := NewString("x")
	if _, err := NewMaybe(signature.Int32, &child); err == nil {
		t.Fatal("NewMaybe accepted a string child for mi")
	}
}

func TestDictEntryRequiresBasicKey(t *testing.T) {
	if _, err := NewDictEntry(NewVariant(NewInt32(1)), NewInt32(2)); err == nil {
		t.Fatal("NewDictEntry accepted a boxed key")
	}
}

func TestByteArrayChildren(t *testing.T) {
	array := mustArray(t, "y", NewByte(1), NewByte(2), NewByte(3))
	if array.Type() != signature.ByteString {
		t.Fatalf("Type() = %q, want ay", array.Type())
	}
	if array.NumChildren() != 3 || array.Child(2).Byte() != 3 {
		t.Errorf("children = %v", array.Children())
	}
	data, ok := array.Bytes()
	if !ok || string(data) != "\x01\x02\x03" {
		t.Errorf("Bytes() = (%x, %v)", data, ok)
	}
	if !array.Equal(NewByteArray([]byte{1, 2, 3})) {
		t.Error("array of bytes does not equal NewByteArray of the same bytes")
	}
}

func TestTupleType(t *testing.T) {
	some := NewString("x")
	tuple := NewTuple(NewUint32(1), NewDouble(2), mustMaybe(t, "s", &some))
	if got := tuple.Type().String(); got != "(udms)" {
		t.Errorf("Type() = %q, want (udms)", got)
	}
	if got := NewTuple().Type(); got != signature.Unit {
		t.Errorf("NewTuple().Type() = %q, want ()", got)
	}
}

func TestEqual(t *testing.T) {
	left := mustArray(t, "{sv}", mustEntry(t, NewString("a"), NewVariant(NewInt32(1))))
	right := mustArray(t, "{sv}", mustEntry(t, NewString("a"), NewVariant(NewInt32(1))))
	other := mustArray(t, "{sv}", mustEntry(t, NewString("a"), NewVariant(NewUint32(1))))
	if !left.Equal(right) {
		t.Error("structurally equal dictionaries compare unequal")
	}
	if left.Equal(other) {
		t.Error("dictionaries with differently typed boxed values compare equal")
	}
	if !NewDouble(math.NaN()).Equal(NewDouble(math.NaN())) {
		t.Error("NaN does not equal itself")
	}
}

func TestUnbox(t *testing.T) {
	inner := NewString("x")
	if got := NewVariant(inner).Unbox(); !got.Equal(inner) {
		t.Errorf("Unbox() = %v, want %v", got, inner)
	}
	if got := inner.Unbox(); !got.Equal(inner) {
		t.Errorf("Unbox() of unboxed = %v, want %v", got, inner)
	}
}
