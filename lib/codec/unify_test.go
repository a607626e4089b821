// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"testing"

	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

func TestUnify(t *testing.T) {
	empty := Unify(nil)
	if !empty.IsEmpty() || empty.IsInconsistent() {
		t.Errorf("Unify(nil) = %+v, want empty", empty)
	}
	if _, ok := empty.Type(); ok {
		t.Error("Unify(nil).Type() reported a type")
	}

	consistent := Unify([]variant.Value{variant.NewInt32(1), variant.NewInt32(2)})
	if got, ok := consistent.Type(); !ok || got != signature.Int32 {
		t.Errorf("Unify(i, i).Type() = %s, %v, want i", got, ok)
	}

	inconsistent := Unify([]variant.Value{variant.NewInt32(1), variant.NewString("a"), variant.NewInt32(3)})
	if !inconsistent.IsInconsistent() {
		t.Errorf("Unify(i, s, i) = %+v, want inconsistent", inconsistent)
	}
	if got := inconsistent.Add(signature.Int32); !got.IsInconsistent() {
		t.Error("Add after inconsistency recovered consistency")
	}
}

func TestToArray(t *testing.T) {
	tests := []struct {
		name   string
		values []variant.Value
		array  string
		tuple  string
	}{
		{"empty", nil, "@au []", "@au []"},
		{"consistent", []variant.Value{variant.NewString("a"), variant.NewString("b")}, "['a', 'b']", "['a', 'b']"},
		{"inconsistent", []variant.Value{variant.NewInt32(1), variant.NewString("b")}, "[<1>, <'b'>]", "(1, 'b')"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			array, err := toArray(test.values, signature.Uint32)
			if err != nil {
				t.Fatalf("toArray failed: %v", err)
			}
			if got := array.Print(true); got != test.array {
				t.Errorf("toArray = %s, want %s", got, test.array)
			}
			tuple, err := toTupleOrArray(test.values, signature.Uint32)
			if err != nil {
				t.Fatalf("toTupleOrArray failed: %v", err)
			}
			if got := tuple.Print(true); got != test.tuple {
				t.Errorf("toTupleOrArray = %s, want %s", got, test.tuple)
			}
		})
	}
}
