// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"slices"

	"github.com/bureau-foundation/gvariant/lib/signature"
	"github.com/bureau-foundation/gvariant/lib/variant"
)

// Dict is a vardict ("a{sv}") under construction: string keys in
// insertion order, each mapped to a value of its own type. The zero
// Dict is empty and ready to use.
//
// Dict encodes to an a{sv} value. Its transports render it as a map
// of unboxed values.
type Dict struct {
	keys   []string
	values map[string]variant.Value
}

// DictFromValue reads a dictionary with string keys. One level of
// boxing is removed from each value.
func DictFromValue(value variant.Value) (*Dict, error) {
	value = unboxAll(value)
	list, ok := entries(value)
	if !ok {
		return nil, &MismatchError{Actual: value.Type().String(), Expected: "a{s*}"}
	}
	dict := &Dict{}
	for _, entry := range list {
		key := entry.Child(0)
		if key.Class() != variant.ClassString {
			return nil, &StringError{Type: key.Type().String()}
		}
		dict.InsertValue(key.Text(), entry.Child(1))
	}
	return dict, nil
}

// Insert encodes value by inference and stores it under key.
func (d *Dict) Insert(key string, value any) error {
	encoded, err := Marshal(value)
	if err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	d.InsertValue(key, encoded)
	return nil
}

// InsertValue stores value under key, replacing an earlier value but
// keeping the key's original position. A boxed value is stored
// unboxed, since every value is boxed on output anyway.
func (d *Dict) InsertValue(key string, value variant.Value) {
	if d.values == nil {
		d.values = make(map[string]variant.Value)
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value.Unbox()
}

// Lookup returns the value stored under key.
func (d *Dict) Lookup(key string) (variant.Value, bool) {
	value, ok := d.values[key]
	return value, ok
}

// LookupInto decodes the value stored under key into target. It
// reports false without touching target when the key is absent.
func (d *Dict) LookupInto(key string, target any) (bool, error) {
	value, ok := d.values[key]
	if !ok {
		return false, nil
	}
	if err := Unmarshal(value, target); err != nil {
		return true, fmt.Errorf("key %q: %w", key, err)
	}
	return true, nil
}

// Remove deletes key and reports whether it was present.
func (d *Dict) Remove(key string) bool {
	if _, ok := d.values[key]; !ok {
		return false
	}
	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
	return true
}

// Len returns the number of keys.
func (d *Dict) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string { return slices.Clone(d.keys) }

// ToValue returns the a{sv} value of d.
func (d *Dict) ToValue() variant.Value {
	entries := make([]variant.Value, len(d.keys))
	for index, key := range d.keys {
		// Keys are strings and values are boxed, so construction
		// cannot fail.
		entry, _ := variant.NewDictEntry(variant.NewString(key), variant.NewVariant(d.values[key]))
		entries[index] = entry
	}
	value, _ := variant.NewArray(signature.MustParse("{sv}"), entries)
	return value
}

// MarshalVariant implements [Marshaler].
func (d Dict) MarshalVariant(*Encoder) (variant.Value, error) {
	return d.ToValue(), nil
}

// UnmarshalVariant implements [Unmarshaler].
func (d *Dict) UnmarshalVariant(value variant.Value) error {
	decoded, err := DictFromValue(value)
	if err != nil {
		return err
	}
	*d = *decoded
	return nil
}

// tree returns the ordered Go tree of d with unboxed values.
func (d *Dict) tree() (Map, error) {
	result := make(Map, len(d.keys))
	for index, key := range d.keys {
		converted, err := valueInterface(d.values[key])
		if err != nil {
			return nil, err
		}
		result[index] = Entry{Key: key, Value: converted}
	}
	return result, nil
}
