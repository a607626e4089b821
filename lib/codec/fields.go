// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"
	"strings"
	"sync"
)

// structField describes one encodable field of a struct type.
type structField struct {
	name  string
	index []int
	typ   reflect.Type
}

// fieldCache maps reflect.Type to []structField.
var fieldCache sync.Map

// cachedFields returns the encodable fields of the struct type t in
// declaration order. Embedded structs without a name tag are
// flattened in place; an earlier field wins over later duplicates of
// its name.
func cachedFields(t reflect.Type) []structField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]structField)
	}
	fields := collectFields(t, nil, map[string]bool{})
	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.([]structField)
}

func collectFields(t reflect.Type, prefix []int, seen map[string]bool) []structField {
	var fields []structField
	for index := range t.NumField() {
		field := t.Field(index)
		tag := field.Tag.Get("variant")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		path := append(append([]int(nil), prefix...), index)

		if field.Anonymous && name == "" && field.Type.Kind() == reflect.Struct {
			fields = append(fields, collectFields(field.Type, path, seen)...)
			continue
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, structField{name: name, index: path, typ: field.Type})
	}
	return fields
}
