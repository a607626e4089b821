// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

// Unification is the result of folding the types of a collection.
type Unification struct {
	state unificationState
	typ   signature.Type
}

type unificationState uint8

const (
	unificationEmpty unificationState = iota
	unificationConsistent
	unificationInconsistent
)

// Unify folds the types of values left to right. The first value
// sets the running type; any later value of a different type makes
// the result inconsistent, and it stays inconsistent.
func Unify(values []variant.Value) Unification {
	var result Unification
	for _, value := range values {
		result = result.Add(value.Type())
	}
	return result
}

// Add folds one more type into the unification.
func (u Unification) Add(t signature.Type) Unification {
	switch u.state {
	case unificationEmpty:
		return Unification{state: unificationConsistent, typ: t}
	case unificationConsistent:
		if u.typ == t {
			return u
		}
		return Unification{state: unificationInconsistent}
	}
	return u
}

// IsEmpty reports whether no types were folded.
func (u Unification) IsEmpty() bool { return u.state == unificationEmpty }

// IsInconsistent reports whether two folded types differed.
func (u Unification) IsInconsistent() bool { return u.state == unificationInconsistent }

// Type returns the common type and true when every folded type was
// the same.
func (u Unification) Type() (signature.Type, bool) {
	return u.typ, u.state == unificationConsistent
}

// toArray builds an array from values. Consistent values form an
// array of their type; inconsistent values are each boxed into an
// array of "v"; no values form an empty array of fallback.
func toArray(values []variant.Value, fallback signature.Type) (variant.Value, error) {
	unified := Unify(values)
	if element, ok := unified.Type(); ok {
		return variant.NewArray(element, values)
	}
	if unified.IsEmpty() {
		return variant.NewArray(fallback, nil)
	}
	return variant.NewArray(signature.Variant, boxAll(values))
}

// toTupleOrArray builds an array from consistent values and a tuple
// from inconsistent ones. No values form an empty array of fallback.
func toTupleOrArray(values []variant.Value, fallback signature.Type) (variant.Value, error) {
	unified := Unify(values)
	if element, ok := unified.Type(); ok {
		return variant.NewArray(element, values)
	}
	if unified.IsEmpty() {
		return variant.NewArray(fallback, nil)
	}
	return variant.NewTuple(values...), nil
}

func boxAll(values []variant.Value) []variant.Value {
	boxed := make([]variant.Value, len(values))
	for index, value := range values {
		boxed[index] = variant.NewVariant(value)
	}
	return boxed
}
