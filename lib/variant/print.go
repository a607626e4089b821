// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/bureau-foundation/gvariant/lib/signature"
)

// Print returns the canonical text form of v. With annotate set, the
// output carries the type annotations needed for [Parse] to recover
// exactly the same type; without it, types that are not the parser's
// defaults (int32, double, string, boolean) may be lost.
func (v Value) Print(annotate bool) string {
	var builder strings.Builder
	v.print(&builder, annotate)
	return builder.String()
}

func (v Value) print(out *strings.Builder, annotate bool) {
	switch v.class {
	case ClassBoolean:
		if v.Bool() {
			out.WriteString("true")
		} else {
			out.WriteString("false")
		}

	case ClassByte:
		if annotate {
			out.WriteString("byte ")
		}
		fmt.Fprintf(out, "0x%02x", v.Byte())
	case ClassInt16:
		writeInteger(out, annotate, "int16 ", strconv.FormatInt(int64(v.Int16()), 10))
	case ClassUint16:
		writeInteger(out, annotate, "uint16 ", strconv.FormatUint(uint64(v.Uint16()), 10))
	case ClassInt32:
		out.WriteString(strconv.FormatInt(int64(v.Int32()), 10))
	case ClassUint32:
		writeInteger(out, annotate, "uint32 ", strconv.FormatUint(uint64(v.Uint32()), 10))
	case ClassInt64:
		writeInteger(out, annotate, "int64 ", strconv.FormatInt(v.Int64(), 10))
	case ClassUint64:
		writeInteger(out, annotate, "uint64 ", strconv.FormatUint(v.Uint64(), 10))
	case ClassHandle:
		writeInteger(out, annotate, "handle ", strconv.FormatInt(int64(v.Int32()), 10))
	case ClassDouble:
		out.WriteString(formatDouble(v.Double()))

	case ClassString:
		out.WriteString(quote(v.text))
	case ClassObjectPath:
		if annotate {
			out.WriteString("objectpath ")
		}
		out.WriteString(quote(v.text))
	case ClassSignature:
		if annotate {
			out.WriteString("signature ")
		}
		out.WriteString(quote(v.text))

	case ClassVariant:
		// Boxed contents are always annotated: their type is not
		// implied by the context.
		out.WriteByte('<')
		v.children[0].print(out, true)
		out.WriteByte('>')

	case ClassMaybe:
		if annotate {
			fmt.Fprintf(out, "@%s ", v.typ)
		}
		if len(v.children) == 0 {
			out.WriteString("nothing")
			return
		}
		// The annotation already fixes the type, so the child prints
		// bare. "just" is needed only where a nested nothing would
		// otherwise be ambiguous.
		child := v.children[0].Print(false)
		if strings.HasSuffix(child, "nothing") {
			out.WriteString("just ")
		}
		out.WriteString(child)

	case ClassArray:
		v.printArray(out, annotate)

	case ClassTuple:
		out.WriteByte('(')
		for index, child := range v.children {
			if index > 0 {
				out.WriteString(", ")
			}
			child.print(out, annotate)
		}
		if len(v.children) == 1 {
			out.WriteByte(',')
		}
		out.WriteByte(')')

	case ClassDictEntry:
		// A lone entry is syntactically a one-element dictionary; the
		// annotation disambiguates it.
		if annotate {
			fmt.Fprintf(out, "@%s ", v.typ)
		}
		out.WriteByte('{')
		v.children[0].print(out, annotate)
		out.WriteString(": ")
		v.children[1].print(out, annotate)
		out.WriteByte('}')
	}
}

func (v Value) printArray(out *strings.Builder, annotate bool) {
	if v.typ == signature.ByteString {
		if text, ok := byteStringText(v.data); ok {
			out.WriteByte('b')
			out.WriteString(quote(text))
			return
		}
	}

	count := v.NumChildren()
	element, _ := v.typ.Element()
	dictionary := element.IsDictEntry()
	if count == 0 {
		if annotate {
			fmt.Fprintf(out, "@%s ", v.typ)
		}
		if dictionary {
			out.WriteString("{}")
		} else {
			out.WriteString("[]")
		}
		return
	}

	// Annotating the first element is enough to fix the element type
	// of the whole array.
	if dictionary {
		out.WriteByte('{')
		for index, entry := range v.children {
			if index > 0 {
				out.WriteString(", ")
			}
			entry.children[0].print(out, annotate)
			out.WriteString(": ")
			entry.children[1].print(out, annotate)
			annotate = false
		}
		out.WriteByte('}')
		return
	}
	out.WriteByte('[')
	for index := range count {
		if index > 0 {
			out.WriteString(", ")
		}
		v.Child(index).print(out, annotate)
		annotate = false
	}
	out.WriteByte(']')
}

func writeInteger(out *strings.Builder, annotate bool, keyword, digits string) {
	if annotate {
		out.WriteString(keyword)
	}
	out.WriteString(digits)
}

func formatDouble(value float64) string {
	switch {
	case math.IsNaN(value):
		return "nan"
	case math.IsInf(value, 1):
		return "inf"
	case math.IsInf(value, -1):
		return "-inf"
	}
	text := strconv.FormatFloat(value, 'g', -1, 64)
	if !strings.ContainsAny(text, ".eEn") {
		text += ".0"
	}
	return text
}

// byteStringText returns the printable form of a NUL-terminated byte
// string, or false if data is not one.
func byteStringText(data []byte) (string, bool) {
	if len(data) == 0 || data[len(data)-1] != 0 {
		return "", false
	}
	for _, b := range data[:len(data)-1] {
		if b < 0x20 || b > 0x7e {
			return "", false
		}
	}
	return string(data[:len(data)-1]), true
}

// quote renders text as a single-quoted literal, switching to double
// quotes when that avoids escaping.
func quote(text string) string {
	delimiter := byte('\'')
	if strings.ContainsRune(text, '\'') && !strings.ContainsRune(text, '"') {
		delimiter = '"'
	}
	var builder strings.Builder
	builder.WriteByte(delimiter)
	for _, r := range text {
		switch r {
		case '\\':
			builder.WriteString(`\\`)
		case '\a':
			builder.WriteString(`\a`)
		case '\b':
			builder.WriteString(`\b`)
		case '\f':
			builder.WriteString(`\f`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\t':
			builder.WriteString(`\t`)
		case '\v':
			builder.WriteString(`\v`)
		default:
			switch {
			case r == rune(delimiter):
				builder.WriteByte('\\')
				builder.WriteRune(r)
			case unicode.IsPrint(r):
				builder.WriteRune(r)
			case r <= 0xffff:
				fmt.Fprintf(&builder, `\u%04x`, r)
			default:
				fmt.Fprintf(&builder, `\U%08x`, r)
			}
		}
	}
	builder.WriteByte(delimiter)
	return builder.String()
}
