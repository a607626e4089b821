// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package signature

import (
	"fmt"
	"strings"
)

// Type is a parsed variant type signature. The zero Type is not a
// valid type; it represents "no type" wherever an optional expectation
// is accepted (see [Type.IsZero]).
type Type struct {
	text string
}

// Predefined types.
var (
	Boolean    = Type{"b"}
	Byte       = Type{"y"}
	Int16      = Type{"n"}
	Uint16     = Type{"q"}
	Int32      = Type{"i"}
	Uint32     = Type{"u"}
	Int64      = Type{"x"}
	Uint64     = Type{"t"}
	Handle     = Type{"h"}
	Double     = Type{"d"}
	String     = Type{"s"}
	ObjectPath = Type{"o"}
	Signature  = Type{"g"}
	Variant    = Type{"v"}

	// Any matches every type.
	Any = Type{"*"}
	// Basic matches every basic type.
	Basic = Type{"?"}
	// AnyTuple matches every tuple type.
	AnyTuple = Type{"r"}
	// Unit is the empty tuple.
	Unit = Type{"()"}

	ByteString    = Type{"ay"}
	StringArray   = Type{"as"}
	VarDict       = Type{"a{sv}"}
	AnyDictionary = Type{"a{?*}"}
	AnyArray      = Type{"a*"}
	AnyMaybe      = Type{"m*"}
)

// Parse parses a complete type signature. The whole string must be
// exactly one type.
func Parse(text string) (Type, error) {
	end, err := scan(text, 0)
	if err != nil {
		return Type{}, err
	}
	if end != len(text) {
		return Type{}, &SyntaxError{Signature: text, Offset: end, Message: "trailing characters after type"}
	}
	return Type{text}, nil
}

// MustParse is like [Parse] but panics on error. Intended for
// package-level constants and tests.
func MustParse(text string) Type {
	parsed, err := Parse(text)
	if err != nil {
		panic("signature: " + err.Error())
	}
	return parsed
}

// Scan parses the single type at the beginning of text and returns it
// along with the number of bytes consumed. Text after the type is left
// for the caller; the text-format parser uses this to read "@T"
// annotations embedded in a larger string.
func Scan(text string) (Type, int, error) {
	end, err := scan(text, 0)
	if err != nil {
		return Type{}, 0, err
	}
	return Type{text[:end]}, end, nil
}

// String returns the canonical signature.
func (t Type) String() string { return t.text }

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.text), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsZero reports whether t is the zero Type (no type).
func (t Type) IsZero() bool { return t.text == "" }

// Equal reports whether t and other are the same type.
func (t Type) Equal(other Type) bool { return t.text == other.text }

func (t Type) code() byte {
	if t.text == "" {
		return 0
	}
	return t.text[0]
}

// IsBasic reports whether t is a basic type or the "?" pattern.
func (t Type) IsBasic() bool { return len(t.text) == 1 && isBasicCode(t.text[0]) }

// IsMaybe reports whether t is a maybe type.
func (t Type) IsMaybe() bool { return t.code() == 'm' }

// IsArray reports whether t is an array type.
func (t Type) IsArray() bool { return t.code() == 'a' }

// IsTuple reports whether t is a tuple type or the "r" pattern.
func (t Type) IsTuple() bool { return t.code() == '(' || t.code() == 'r' }

// IsDictEntry reports whether t is a dict entry type.
func (t Type) IsDictEntry() bool { return t.code() == '{' }

// IsVariant reports whether t is exactly the boxed type "v".
func (t Type) IsVariant() bool { return t.text == "v" }

// IsDictionary reports whether t is an array of dict entries.
func (t Type) IsDictionary() bool { return len(t.text) > 1 && t.text[0] == 'a' && t.text[1] == '{' }

// IsContainer reports whether t has child types (maybe, array,
// tuple, dict entry, boxed, or the "*" and "r" patterns).
func (t Type) IsContainer() bool {
	switch t.code() {
	case 'm', 'a', '(', '{', 'v', 'r', '*':
		return true
	}
	return false
}

// IsDefinite reports whether t contains no indefinite codes.
func (t Type) IsDefinite() bool {
	return t.text != "" && !strings.ContainsAny(t.text, "*?r")
}

// Element returns the element type of an array or maybe type.
func (t Type) Element() (Type, error) {
	if !t.IsArray() && !t.IsMaybe() {
		return Type{}, &ShapeError{Type: t, Want: "an array or maybe"}
	}
	return Type{t.text[1:]}, nil
}

// Key returns the key type of a dict entry type.
func (t Type) Key() (Type, error) {
	if !t.IsDictEntry() {
		return Type{}, &ShapeError{Type: t, Want: "a dict entry"}
	}
	return Type{t.text[1:2]}, nil
}

// Value returns the value type of a dict entry type.
func (t Type) Value() (Type, error) {
	if !t.IsDictEntry() {
		return Type{}, &ShapeError{Type: t, Want: "a dict entry"}
	}
	return Type{t.text[2 : len(t.text)-1]}, nil
}

// Items returns the member types of a definite tuple or of a dict
// entry, in order. The "r" pattern has no known members and fails.
func (t Type) Items() ([]Type, error) {
	if t.code() != '(' && t.code() != '{' {
		return nil, &ShapeError{Type: t, Want: "a tuple or dict entry"}
	}
	return splitMembers(t.text[1 : len(t.text)-1]), nil
}

// NumItems returns the number of members of a tuple or dict entry
// type, or -1 for any other type.
func (t Type) NumItems() int {
	items, err := t.Items()
	if err != nil {
		return -1
	}
	return len(items)
}

// ArrayOf returns the array type with the given element type.
func ArrayOf(element Type) Type { return Type{"a" + element.text} }

// MaybeOf returns the maybe type with the given element type.
func MaybeOf(element Type) Type { return Type{"m" + element.text} }

// TupleOf returns the tuple type with the given members.
func TupleOf(members ...Type) Type {
	var builder strings.Builder
	builder.WriteByte('(')
	for _, member := range members {
		builder.WriteString(member.text)
	}
	builder.WriteByte(')')
	return Type{builder.String()}
}

// DictEntryOf returns the dict entry type with the given key and
// value types. The key must be basic.
func DictEntryOf(key, value Type) (Type, error) {
	if !key.IsBasic() {
		return Type{}, &ShapeError{Type: key, Want: "a basic key type"}
	}
	return Type{"{" + key.text + value.text + "}"}, nil
}

// IsSubtypeOf reports whether every value of type t is also a value
// of type pattern. Definite types are subtypes only of themselves and
// of patterns that match them: "*" matches any type, "?" any basic
// type, and "r" any tuple.
func (t Type) IsSubtypeOf(pattern Type) bool {
	if t.IsZero() || pattern.IsZero() {
		return false
	}
	sub, super := t.text, pattern.text
	i, j := 0, 0
	for j < len(super) {
		if i >= len(sub) {
			return false
		}
		switch code := super[j]; {
		case code == sub[i]:
			i++
		case code == '*':
			i = skip(sub, i)
		case code == '?':
			if !isBasicCode(sub[i]) {
				return false
			}
			i++
		case code == 'r':
			if sub[i] != '(' {
				return false
			}
			i = skip(sub, i)
		default:
			return false
		}
		j++
	}
	return i == len(sub)
}

func isBasicCode(code byte) bool {
	switch code {
	case 'b', 'y', 'n', 'q', 'i', 'u', 'x', 't', 'h', 'd', 's', 'o', 'g', '?':
		return true
	}
	return false
}

// scan returns the end offset of the single type starting at start.
func scan(text string, start int) (int, error) {
	if start >= len(text) {
		return 0, &SyntaxError{Signature: text, Offset: start, Message: "missing type"}
	}
	code := text[start]
	switch {
	case isBasicCode(code), code == 'v', code == '*', code == 'r':
		return start + 1, nil
	case code == 'a', code == 'm':
		return scan(text, start+1)
	case code == '(':
		position := start + 1
		for {
			if position >= len(text) {
				return 0, &SyntaxError{Signature: text, Offset: position, Message: "unterminated tuple"}
			}
			if text[position] == ')' {
				return position + 1, nil
			}
			end, err := scan(text, position)
			if err != nil {
				return 0, err
			}
			position = end
		}
	case code == '{':
		if start+1 >= len(text) || !isBasicCode(text[start+1]) {
			return 0, &SyntaxError{Signature: text, Offset: start + 1, Message: "dict entry key must be a basic type"}
		}
		end, err := scan(text, start+2)
		if err != nil {
			return 0, err
		}
		if end >= len(text) || text[end] != '}' {
			return 0, &SyntaxError{Signature: text, Offset: end, Message: "dict entry must have exactly two members"}
		}
		return end + 1, nil
	default:
		return 0, &SyntaxError{Signature: text, Offset: start, Message: fmt.Sprintf("invalid type code %q", code)}
	}
}

// skip is scan for text already known to be valid.
func skip(text string, start int) int {
	end, err := scan(text, start)
	if err != nil {
		return len(text)
	}
	return end
}

func splitMembers(text string) []Type {
	members := []Type{}
	for position := 0; position < len(text); {
		end := skip(text, position)
		members = append(members, Type{text[position:end]})
		position = end
	}
	return members
}
