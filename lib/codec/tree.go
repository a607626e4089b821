// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

// Map is an ordered association list. Unlike a Go map it preserves
// insertion order and allows keys of any basic Go type, which is what
// dictionaries of the variant format carry. It encodes to a
// dictionary array in entry order.
type Map []Entry

// Entry is one key/value pair of a [Map], and the Go form of a bare
// dict entry value.
type Entry struct {
	Key   any
	Value any
}

// Get returns the value of the first entry whose key equals key.
func (m Map) Get(key any) (any, bool) {
	for _, entry := range m {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of the first entry whose key equals key, or
// appends a new entry.
func (m *Map) Set(key, value any) {
	for index := range *m {
		if (*m)[index].Key == key {
			(*m)[index].Value = value
			return
		}
	}
	*m = append(*m, Entry{Key: key, Value: value})
}

// Keys returns the keys in order.
func (m Map) Keys() []any {
	keys := make([]any, len(m))
	for index, entry := range m {
		keys[index] = entry.Key
	}
	return keys
}

// Tuple is a fixed-arity sequence. It always encodes as a tuple, even
// when every member has the same type, so the tuple values returned
// by [Any.Interface] encode back unchanged.
type Tuple []any

// Boxed marks a value that was boxed ("v") in the variant form. It
// encodes back to a boxed value. JSON and YAML render it as its
// contents; CBOR wraps it in a dedicated tag.
type Boxed struct {
	Value any
}

// ObjectPath is a string encoded as an object path ("o").
type ObjectPath string

// Handle is an index into an out-of-band file descriptor array ("h").
type Handle int32
