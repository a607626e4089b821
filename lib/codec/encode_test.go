// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

type item struct {
	ID   uint32 `variant:"id"`
	Name string `variant:"name"`
}

type color uint8

const (
	red color = iota
	green
	blue
)

func (color) EnumNames() []string { return []string{"red", "green", "blue"} }

// mustParseValue parses annotated text in tests.
func mustParseValue(t *testing.T, text string) variant.Value {
	t.Helper()
	value, err := variant.Parse(text)
	if err != nil {
		t.Fatalf("variant.Parse(%q): %v", text, err)
	}
	return value
}

func withType(text string) Option {
	return WithType(signature.MustParse(text))
}

func TestMarshalInference(t *testing.T) {
	var nilUint16 *uint16
	five := uint16(5)
	tests := []struct {
		name  string
		value any
		opts  []Option
		sig   string
		text  string
	}{
		{"bool", true, nil, "b", "true"},
		{"uint16 slice", []uint16{1, 2, 3}, nil, "aq", "[uint16 1, 2, 3]"},
		{"tuple", Tuple{"a", uint64(2)}, nil, "(st)", "('a', uint64 2)"},
		{"homogeneous tuple", Tuple{int32(1), int32(2)}, nil, "(ii)", "(1, 2)"},
		{"ordered map", Map{{"x", uint64(1)}, {"y", uint64(2)}}, nil, "a{st}", "{'x': uint64 1, 'y': 2}"},
		{"reversed map", Map{{"y", uint64(2)}, {"x", uint64(1)}}, nil, "a{st}", "{'y': uint64 2, 'x': 1}"},
		{"mixed map", Map{{"a", uint64(1)}, {"b", "s"}}, nil, "a{sv}", "{'a': <uint64 1>, 'b': <'s'>}"},
		{"go map sorted", map[string]int{"b": 2, "a": 1}, nil, "a{sx}", "{'a': int64 1, 'b': 2}"},
		{"struct tuple", item{ID: 1, Name: "Item"}, []Option{withType("(us)")}, "(us)", "(uint32 1, 'Item')"},
		{"struct machine", item{ID: 1, Name: "Item"}, nil, "(us)", "(uint32 1, 'Item')"},
		{"struct human", item{ID: 1, Name: "Item"}, []Option{HumanReadable(true)}, "a{sv}", "{'id': <uint32 1>, 'name': <'Item'>}"},
		{"struct human tuple", item{ID: 1, Name: "Item"}, []Option{HumanReadable(true), withType("r")}, "(us)", "(uint32 1, 'Item')"},
		{"struct dictionary", item{ID: 1, Name: "Item"}, []Option{withType("a{sv}")}, "a{sv}", "{'id': <uint32 1>, 'name': <'Item'>}"},
		{"heterogeneous slice", []any{int32(1), "a"}, nil, "(is)", "(1, 'a')"},
		{"heterogeneous under array", []any{int32(1), "a"}, []Option{withType("av")}, "av", "[<1>, <'a'>]"},
		{"homogeneous any slice", []any{int32(1), int32(2)}, nil, "ai", "[1, 2]"},
		{"bytes", []byte("hi\x00"), nil, "ay", "b'hi'"},
		{"byte tuple", []byte{1, 2}, []Option{withType("(yy)")}, "(yy)", "(byte 0x01, byte 0x02)"},
		{"bytes as variants", []byte{1, 2}, []Option{withType("av")}, "av", "[<byte 0x01>, <byte 0x02>]"},
		{"bytes under pattern", []byte("hi\x00"), []Option{withType("a*")}, "ay", "b'hi'"},
		{"byte array as variants", [2]byte{1, 2}, []Option{withType("av")}, "av", "[<byte 0x01>, <byte 0x02>]"},
		{"empty strings", []string{}, nil, "as", "@as []"},
		{"empty any slice", []any{}, nil, "av", "@av []"},
		{"empty expected", []any{}, []Option{withType("ai")}, "ai", "@ai []"},
		{"empty ordered map", Map{}, nil, "a{sv}", "@a{sv} {}"},
		{"empty go map", map[int32]bool{}, nil, "a{ib}", "@a{ib} {}"},
		{"nil pointer", nilUint16, nil, "mq", "@mq nothing"},
		{"pointer", &five, nil, "mq", "@mq 5"},
		{"nil", nil, nil, "mv", "@mv nothing"},
		{"nil expected", nil, []Option{withType("ms")}, "ms", "@ms nothing"},
		{"boxed", int32(5), []Option{withType("v")}, "v", "<5>"},
		{"already boxed", variant.NewVariant(variant.NewInt32(5)), []Option{withType("v")}, "v", "<5>"},
		{"explicit box", Boxed{Value: "x"}, nil, "v", "<'x'>"},
		{"object path", ObjectPath("/org/example"), nil, "o", "objectpath '/org/example'"},
		{"string as path", "/org/example", []Option{withType("o")}, "o", "objectpath '/org/example'"},
		{"string as signature", "a{sv}", []Option{withType("g")}, "g", "signature 'a{sv}'"},
		{"signature", signature.MustParse("as"), nil, "g", "signature 'as'"},
		{"handle", Handle(3), nil, "h", "handle 3"},
		{"entry", Entry{Key: "k", Value: int32(1)}, nil, "{si}", "@{si} {'k': 1}"},
		{"enum machine", green, nil, "u", "uint32 1"},
		{"enum human", green, []Option{HumanReadable(true)}, "s", "'green'"},
		{"enum human index", blue, []Option{HumanReadable(true), withType("u")}, "u", "uint32 2"},
		{"enum name", red, []Option{withType("s")}, "s", "'red'"},
		{"number literal", json.Number("7"), nil, "x", "int64 7"},
		{"number uint16", json.Number("7"), []Option{withType("q")}, "q", "uint16 7"},
		{"number large", json.Number("18446744073709551615"), nil, "t", "uint64 18446744073709551615"},
		{"number float", json.Number("1.5"), nil, "d", "1.5"},
		{"number double", json.Number("2"), []Option{withType("d")}, "d", "2.0"},
		{"any pattern", []int32{1}, []Option{withType("a*")}, "ai", "[1]"},
		{"basic pattern", "x", []Option{withType("?")}, "s", "'x'"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			value, err := Marshal(test.value, test.opts...)
			if err != nil {
				t.Fatalf("Marshal(%v) failed: %v", test.value, err)
			}
			if got := value.Type().String(); got != test.sig {
				t.Errorf("Marshal(%v) type = %s, want %s", test.value, got, test.sig)
			}
			if got := value.Print(true); got != test.text {
				t.Errorf("Marshal(%v) = %s, want %s", test.value, got, test.text)
			}
		})
	}
}

func TestMarshalErrors(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		_, err := Marshal(uint32(1), withType("s"))
		var mismatch *MismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("Marshal(uint32) as s error = %v, want MismatchError", err)
		}
		if mismatch.Actual != "u" || mismatch.Expected != "s" {
			t.Errorf("MismatchError = %+v, want Actual u, Expected s", mismatch)
		}
	})

	t.Run("tuple length", func(t *testing.T) {
		_, err := Marshal([]int{1, 2}, withType("(x)"))
		var length *LengthMismatchError
		if !errors.As(err, &length) {
			t.Fatalf("Marshal([]int{1, 2}) as (x) error = %v, want LengthMismatchError", err)
		}
		if length.Actual != 2 || length.Expected != 1 {
			t.Errorf("LengthMismatchError = %+v, want Actual 2, Expected 1", length)
		}
	})

	t.Run("struct arity", func(t *testing.T) {
		_, err := Marshal(item{}, withType("(u)"))
		var length *LengthMismatchError
		if !errors.As(err, &length) {
			t.Fatalf("Marshal(item) as (u) error = %v, want LengthMismatchError", err)
		}
	})

	t.Run("element mismatch", func(t *testing.T) {
		_, err := Marshal([]any{int32(1), "a"}, withType("ai"))
		var mismatch *MismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("Marshal(mixed) as ai error = %v, want MismatchError", err)
		}
	})

	t.Run("inconsistent keys", func(t *testing.T) {
		_, err := Marshal(Map{{"a", int32(1)}, {int32(2), int32(2)}})
		if !errors.Is(err, ErrInconsistentTypes) {
			t.Errorf("Marshal(mixed keys) error = %v, want ErrInconsistentTypes", err)
		}
	})

	t.Run("container key", func(t *testing.T) {
		_, err := Marshal(Map{{Tuple{int32(1)}, int32(1)}})
		var unsupported *UnsupportedTypeError
		if !errors.As(err, &unsupported) {
			t.Errorf("Marshal(tuple key) error = %v, want UnsupportedTypeError", err)
		}
	})

	t.Run("number out of range", func(t *testing.T) {
		_, err := Marshal(json.Number("70000"), withType("q"))
		var coercion *CoercionError
		if !errors.As(err, &coercion) {
			t.Fatalf("Marshal(70000) as q error = %v, want CoercionError", err)
		}
		if coercion.Value != "70000" || coercion.Target != "q" {
			t.Errorf("CoercionError = %+v, want Value 70000, Target q", coercion)
		}
	})

	t.Run("enum out of range", func(t *testing.T) {
		_, err := Marshal(color(9), HumanReadable(true))
		var coercion *CoercionError
		if !errors.As(err, &coercion) {
			t.Errorf("Marshal(color(9)) error = %v, want CoercionError", err)
		}
	})

	t.Run("bad object path", func(t *testing.T) {
		if _, err := Marshal("not a path", withType("o")); err == nil {
			t.Error("Marshal(\"not a path\") as o should fail")
		}
	})

	for _, text := range []string{"a\xffb", "a\x00b"} {
		t.Run("invalid string "+strconv.Quote(text), func(t *testing.T) {
			_, err := Marshal(text)
			var invalid *InvalidStringError
			if !errors.As(err, &invalid) {
				t.Fatalf("Marshal(%q) error = %v, want InvalidStringError", text, err)
			}
			if !errors.Is(err, variant.ErrInvalidString) {
				t.Errorf("Marshal(%q) error = %v, want variant.ErrInvalidString", text, err)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := Marshal(make(chan int))
		var unsupported *UnsupportedTypeError
		if !errors.As(err, &unsupported) {
			t.Errorf("Marshal(chan) error = %v, want UnsupportedTypeError", err)
		}
	})

	t.Run("empty under pattern", func(t *testing.T) {
		if _, err := Marshal([]any{}, withType("a?")); err != nil {
			t.Errorf("Marshal([]any{}) as a? failed: %v", err)
		}
	})
}

// pointMarshaler encodes as a pair of int32, checking the expected
// type it receives.
type point struct{ x, y int32 }

func (p point) MarshalVariant(e *Encoder) (variant.Value, error) {
	if e.Expected() == signature.String {
		return variant.NewString("point"), nil
	}
	return variant.NewTuple(variant.NewInt32(p.x), variant.NewInt32(p.y)), nil
}

func TestMarshaler(t *testing.T) {
	value, err := Marshal([]point{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("Marshal([]point) failed: %v", err)
	}
	if got, want := value.Print(true), "[(1, 2), (3, 4)]"; got != want {
		t.Errorf("Marshal([]point) = %s, want %s", got, want)
	}

	value, err = Marshal(point{}, withType("s"))
	if err != nil {
		t.Fatalf("Marshal(point) as s failed: %v", err)
	}
	if got, want := value.Print(true), "'point'"; got != want {
		t.Errorf("Marshal(point) as s = %s, want %s", got, want)
	}
}

type embeddedBase struct {
	Kind string `variant:"kind"`
}

type embeddingRecord struct {
	Before  int32 `variant:"before"`
	embeddedBase
	After   bool `variant:"after"`
	Skipped int  `variant:"-"`
	hidden  int
}

func TestMarshalEmbeddedFields(t *testing.T) {
	value, err := Marshal(embeddingRecord{Before: 1, embeddedBase: embeddedBase{Kind: "k"}, After: true, Skipped: 5, hidden: 6})
	if err != nil {
		t.Fatalf("Marshal(embeddingRecord) failed: %v", err)
	}
	if got, want := value.Print(true), "(1, 'k', true)"; got != want {
		t.Errorf("Marshal(embeddingRecord) = %s, want %s", got, want)
	}
}

func TestEncoderEncodeAs(t *testing.T) {
	encoder := NewEncoder(HumanReadable(true))
	if !encoder.HumanReadable() {
		t.Error("HumanReadable() = false, want true")
	}
	value, err := encoder.EncodeAs(item{ID: 2, Name: "x"}, signature.MustParse("(us)"))
	if err != nil {
		t.Fatalf("EncodeAs(item, (us)) failed: %v", err)
	}
	if got, want := value.Print(true), "(uint32 2, 'x')"; got != want {
		t.Errorf("EncodeAs(item, (us)) = %s, want %s", got, want)
	}
}

func TestSignatureOf(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{true, "b"},
		{int8(0), "n"},
		{0, "x"},
		{uint(0), "t"},
		{float32(0), "d"},
		{"", "s"},
		{[]byte(nil), "ay"},
		{[]string(nil), "as"},
		{map[string]uint16(nil), "a{sq}"},
		{(*int32)(nil), "mi"},
		{item{}, "(us)"},
		{green, "u"},
		{Dict{}, "a{sv}"},
		{signature.Type{}, "g"},
		{ObjectPath(""), "o"},
		{Any{}, "v"},
	}
	for _, test := range tests {
		got, ok := SignatureOf(reflect.TypeOf(test.value))
		if !ok || got.String() != test.want {
			t.Errorf("SignatureOf(%T) = %s, %v, want %s", test.value, got, ok, test.want)
		}
	}

	for _, value := range []any{Map{}, Tuple{}, point{}, map[[2]int]int(nil)} {
		if got, ok := SignatureOf(reflect.TypeOf(value)); ok {
			t.Errorf("SignatureOf(%T) = %s, want no static type", value, got)
		}
	}
}

func BenchmarkMarshalStruct(b *testing.B) {
	records := make([]item, 256)
	for index := range records {
		records[index] = item{ID: uint32(index), Name: "record"}
	}
	for b.Loop() {
		if _, err := Marshal(records); err != nil {
			b.Fatal(err)
		}
	}
}
