// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"
)

// MismatchError reports a value whose shape is not a subtype of the
// expected type, or a target that cannot hold the source value.
// Actual and Expected are type signatures, or Go type names for
// targets with no signature of their own.
type MismatchError struct {
	Actual   string
	Expected string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("type mismatch: got %s, want %s", e.Actual, e.Expected)
}

// LengthMismatchError reports a sequence whose length differs from
// the arity a tuple type or fixed-size target requires.
type LengthMismatchError struct {
	Actual   int
	Expected int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("length mismatch: got %d elements, want %d", e.Actual, e.Expected)
}

// UnsupportedTypeError reports a Go type or variant type the codec
// cannot represent: channels, functions, complex numbers, maps with
// non-basic keys, and the like.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return "unsupported type: " + e.Type
}

// StringError reports a string read from a value that is not a
// string, object path or signature.
type StringError struct {
	Type string
}

func (e *StringError) Error() string {
	return fmt.Sprintf("cannot read a string from a value of type %s", e.Type)
}

// InvalidStringError reports Go text that a GVariant string cannot
// hold. Err wraps [variant.ErrInvalidString].
type InvalidStringError struct {
	Text string
	Err  error
}

func (e *InvalidStringError) Error() string {
	return fmt.Sprintf("cannot encode string: %v", e.Err)
}

func (e *InvalidStringError) Unwrap() error { return e.Err }

// CoercionError reports a numeric value outside the range of the
// target type.
type CoercionError struct {
	Value  string
	Target string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot represent %s as %s", e.Value, e.Target)
}

// ErrInconsistentTypes is returned when collection members disagree
// on their type and no fallback applies. Map keys of different basic
// types get this error rather than the variant fallback used for
// values: a dictionary key must be basic, so it cannot be boxed, and
// keys are never coerced to strings.
var ErrInconsistentTypes = errors.New("inconsistent collection types")

// InvalidTargetError reports an Unmarshal target that is not a
// non-nil pointer.
type InvalidTargetError struct {
	Type string
}

func (e *InvalidTargetError) Error() string {
	if e.Type == "" {
		return "codec: Unmarshal(nil)"
	}
	return "codec: Unmarshal(non-pointer " + e.Type + ")"
}
