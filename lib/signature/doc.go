// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package signature implements the type algebra of the variant format.
//
// A [Type] is an immutable, parsed type signature such as "a{sv}" or
// "(ustmas)". Types compare by their canonical string, so Type is a
// comparable value usable as a map key and with ==.
//
// The grammar:
//
//	basic       b y n q i u x t h d s o g
//	boxed       v
//	indefinite  * (any type)  ? (any basic type)  r (any tuple)
//	maybe       m<T>
//	array       a<T>
//	tuple       (<T>...)
//	dict entry  {<basic><T>}
//
// Types containing an indefinite code are patterns: values never have
// them, but they are useful as expectations. [Type.IsSubtypeOf]
// implements the pattern match.
//
// Decomposition methods ([Type.Element], [Type.Key], [Type.Value],
// [Type.Items]) return a [*ShapeError] when applied to a type of the
// wrong shape. [Type.Alignment] and [Type.FixedSize] describe the
// binary layout of a definite type and are consumed by the serializer
// in lib/variant.
//
// This package has no dependencies outside the standard library.
package signature
