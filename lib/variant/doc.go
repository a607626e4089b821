// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package variant implements values of the variant format and their
// two canonical representations.
//
// A [Value] is an immutable tagged sum: a primitive (a [Class] plus
// its scalar payload), a container (a [Class] plus ordered children,
// each itself a Value), or a boxed value (one child carrying its own
// type, under the type "v"). Constructors enforce the structural
// rules of the format: every array child has exactly the declared
// element type, a dict entry key is basic, a maybe holds zero or one
// child of its element type. Consumers traverse values with an
// exhaustive switch on [Value.Class].
//
// # Binary form
//
// [Value.Serialize] produces the GVariant serialization for an
// explicit byte order: naturally aligned scalars, NUL-terminated
// strings, and framing offsets at the end of variable-size arrays and
// tuples. [Deserialize] reads it back given the type. [Value.Byteswap]
// reinterprets every numeric leaf in the opposite byte order, which is
// what a host of the other endianness sees when it reads the same
// bytes natively.
//
// Deserialize checks framing bounds so that malformed input returns an
// error rather than panicking, but it does not check normal form.
// Callers receiving bytes from an untrusted peer validate upstream.
//
// # Text form
//
// [Value.Print] renders the canonical text grammar, optionally with
// the type annotations needed for the text to parse back to exactly
// the same type:
//
//	(uint32 1, 'Item', @ms nothing, [<int64 5>, <'x'>], {'k': <true>})
//
// [Parse] and [ParseAs] read it back. Unannotated integers default to
// int32 and unannotated floats to double; arrays containing any float
// literal become arrays of double. Empty arrays and "nothing" need an
// annotation or an expected type.
package variant
