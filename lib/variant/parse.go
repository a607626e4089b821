// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bureau-foundation/gvariant/lib/signature"
)

// ParseError reports text that is not a valid value.
type ParseError struct {
	// Offset is the byte offset in the input where the problem was
	// detected.
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Message)
}

// Parse reads a value from its text form, inferring the type from the
// literals and annotations present.
func Parse(text string) (Value, error) {
	return ParseAs(signature.Type{}, text)
}

// ParseAs reads a value from its text form. If expected is definite
// the text is read as that type; if it is zero or a pattern, the type
// is inferred and must match the pattern.
func ParseAs(expected signature.Type, text string) (Value, error) {
	p := &parser{text: text}
	root, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.position != len(p.text) {
		return Value{}, p.errorf(p.position, "unexpected %q after value", p.text[p.position:])
	}

	target := expected
	if target.IsZero() || !target.IsDefinite() {
		inferred, ok := root.infer()
		if !ok {
			return Value{}, p.errorf(root.offset, "cannot infer type; add a type annotation")
		}
		if !target.IsZero() && !inferred.IsSubtypeOf(target) {
			return Value{}, p.errorf(root.offset, "value of type %q does not match %q", inferred, target)
		}
		target = inferred
	}
	return root.build(target)
}

type nodeKind uint8

const (
	nodeNumber nodeKind = iota
	nodeString
	nodeByteString
	nodeBoolean
	nodeNothing
	nodeJust
	nodeArray
	nodeDictionary
	nodeTuple
	nodeBoxed
	nodeTyped
)

type node struct {
	kind   nodeKind
	offset int

	// text is the literal of numbers and the decoded contents of
	// strings and byte strings.
	text    string
	boolean bool

	// children of arrays, tuples, and the single child of just,
	// boxed and typed nodes.
	children []*node
	// keys and values of dictionaries, pairwise.
	keys, values []*node

	annotation signature.Type
}

// keywords maps type keywords to the type they annotate.
var keywords = map[string]signature.Type{
	"boolean":    signature.Boolean,
	"byte":       signature.Byte,
	"int16":      signature.Int16,
	"uint16":     signature.Uint16,
	"int32":      signature.Int32,
	"uint32":     signature.Uint32,
	"handle":     signature.Handle,
	"int64":      signature.Int64,
	"uint64":     signature.Uint64,
	"double":     signature.Double,
	"string":     signature.String,
	"objectpath": signature.ObjectPath,
	"signature":  signature.Signature,
}

type parser struct {
	text     string
	position int
}

func (p *parser) errorf(offset int, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.position < len(p.text) {
		switch p.text[p.position] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.position++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.position >= len(p.text) {
		return 0
	}
	return p.text[p.position]
}

// consume skips whitespace and then the given punctuation if present.
func (p *parser) consume(punctuation byte) bool {
	p.skipSpace()
	if p.peek() == punctuation {
		p.position++
		return true
	}
	return false
}

func (p *parser) parseValue() (*node, error) {
	p.skipSpace()
	start := p.position
	if start >= len(p.text) {
		return nil, p.errorf(start, "unexpected end of input")
	}

	switch c := p.text[start]; {
	case c == '@':
		p.position++
		annotation, consumed, err := signature.Scan(p.text[p.position:])
		if err != nil {
			return nil, p.errorf(p.position, "type annotation: %v", err)
		}
		if !annotation.IsDefinite() {
			return nil, p.errorf(p.position, "type annotation %q is not definite", annotation)
		}
		p.position += consumed
		return p.parseAnnotated(start, annotation)

	case c == '[':
		p.position++
		return p.parseArray(start)

	case c == '(':
		p.position++
		return p.parseTuple(start)

	case c == '{':
		p.position++
		return p.parseDictionary(start)

	case c == '<':
		p.position++
		inner, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if !p.consume('>') {
			return nil, p.errorf(p.position, "expected '>' to close boxed value")
		}
		return &node{kind: nodeBoxed, offset: start, children: []*node{inner}}, nil

	case c == '\'' || c == '"':
		text, err := p.parseQuoted(false)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeString, offset: start, text: text}, nil

	case c == 'b' && start+1 < len(p.text) && (p.text[start+1] == '\'' || p.text[start+1] == '"'):
		p.position++
		text, err := p.parseQuoted(true)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeByteString, offset: start, text: text + "\x00"}, nil

	case isDigit(c) || c == '-' || c == '+' || c == '.':
		return p.parseNumber(start)

	case isLetter(c):
		word := p.readWord()
		switch word {
		case "true", "false":
			return &node{kind: nodeBoolean, offset: start, boolean: word == "true"}, nil
		case "nothing":
			return &node{kind: nodeNothing, offset: start}, nil
		case "just":
			inner, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			return &node{kind: nodeJust, offset: start, children: []*node{inner}}, nil
		case "inf", "nan":
			return &node{kind: nodeNumber, offset: start, text: word}, nil
		}
		if annotation, ok := keywords[word]; ok {
			return p.parseAnnotated(start, annotation)
		}
		return nil, p.errorf(start, "unknown keyword %q", word)
	}
	return nil, p.errorf(start, "unexpected character %q", p.text[start])
}

func (p *parser) parseAnnotated(start int, annotation signature.Type) (*node, error) {
	inner, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &node{kind: nodeTyped, offset: start, annotation: annotation, children: []*node{inner}}, nil
}

func (p *parser) parseArray(start int) (*node, error) {
	array := &node{kind: nodeArray, offset: start}
	if p.consume(']') {
		return array, nil
	}
	for {
		element, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		array.children = append(array.children, element)
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			return array, nil
		}
		return nil, p.errorf(p.position, "expected ',' or ']' in array")
	}
}

func (p *parser) parseTuple(start int) (*node, error) {
	tuple := &node{kind: nodeTuple, offset: start}
	if p.consume(')') {
		return tuple, nil
	}
	for {
		member, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		tuple.children = append(tuple.children, member)
		if p.consume(',') {
			if p.consume(')') {
				return tuple, nil
			}
			continue
		}
		if p.consume(')') {
			return tuple, nil
		}
		return nil, p.errorf(p.position, "expected ',' or ')' in tuple")
	}
}

func (p *parser) parseDictionary(start int) (*node, error) {
	dictionary := &node{kind: nodeDictionary, offset: start}
	if p.consume('}') {
		return dictionary, nil
	}
	for {
		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if !p.consume(':') {
			return nil, p.errorf(p.position, "expected ':' after dictionary key")
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		dictionary.keys = append(dictionary.keys, key)
		dictionary.values = append(dictionary.values, value)
		if p.consume(',') {
			continue
		}
		if p.consume('}') {
			return dictionary, nil
		}
		return nil, p.errorf(p.position, "expected ',' or '}' in dictionary")
	}
}

func (p *parser) readWord() string {
	start := p.position
	for p.position < len(p.text) {
		c := p.text[p.position]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			break
		}
		p.position++
	}
	return p.text[start:p.position]
}

func (p *parser) parseNumber(start int) (*node, error) {
	hex := false
	for p.position < len(p.text) {
		c := p.text[p.position]
		switch {
		case isDigit(c), c == '.', c == '_':
		case c == 'x' || c == 'X':
			hex = true
		case isLetter(c):
		case c == '+' || c == '-':
			if p.position != start {
				previous := p.text[p.position-1]
				if hex || (previous != 'e' && previous != 'E') {
					return p.numberNode(start)
				}
			}
		default:
			return p.numberNode(start)
		}
		p.position++
	}
	return p.numberNode(start)
}

func (p *parser) numberNode(start int) (*node, error) {
	text := p.text[start:p.position]
	if text == "" || text == "-" || text == "+" {
		return nil, p.errorf(start, "invalid number %q", text)
	}
	return &node{kind: nodeNumber, offset: start, text: text}, nil
}

// parseQuoted reads a quoted literal starting at the opening quote.
// Byte strings additionally accept octal escapes for arbitrary bytes.
func (p *parser) parseQuoted(byteString bool) (string, error) {
	delimiter := p.text[p.position]
	p.position++
	var builder strings.Builder
	for {
		if p.position >= len(p.text) {
			return "", p.errorf(p.position, "unterminated string")
		}
		c := p.text[p.position]
		if c == delimiter {
			p.position++
			return builder.String(), nil
		}
		if c != '\\' {
			_, size := utf8.DecodeRuneInString(p.text[p.position:])
			builder.WriteString(p.text[p.position : p.position+size])
			p.position += size
			continue
		}

		escapeStart := p.position
		p.position++
		if p.position >= len(p.text) {
			return "", p.errorf(escapeStart, "unterminated escape")
		}
		e := p.text[p.position]
		p.position++
		switch e {
		case 'a':
			builder.WriteByte('\a')
		case 'b':
			builder.WriteByte('\b')
		case 'f':
			builder.WriteByte('\f')
		case 'n':
			builder.WriteByte('\n')
		case 'r':
			builder.WriteByte('\r')
		case 't':
			builder.WriteByte('\t')
		case 'v':
			builder.WriteByte('\v')
		case 'u', 'U':
			width := 4
			if e == 'U' {
				width = 8
			}
			if p.position+width > len(p.text) {
				return "", p.errorf(escapeStart, "truncated unicode escape")
			}
			code, err := strconv.ParseUint(p.text[p.position:p.position+width], 16, 32)
			if err != nil || !utf8.ValidRune(rune(code)) {
				return "", p.errorf(escapeStart, "invalid unicode escape")
			}
			builder.WriteRune(rune(code))
			p.position += width
		default:
			if byteString && e >= '0' && e <= '7' {
				code := int(e - '0')
				for digits := 1; digits < 3 && p.position < len(p.text); digits++ {
					next := p.text[p.position]
					if next < '0' || next > '7' {
						break
					}
					code = code*8 + int(next-'0')
					p.position++
				}
				if code > 0xff {
					return "", p.errorf(escapeStart, "octal escape out of range")
				}
				builder.WriteByte(byte(code))
				continue
			}
			builder.WriteByte(e)
		}
	}
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

// infer returns the type the node denotes without context, or false
// if it cannot be determined (empty containers, nothing).
func (n *node) infer() (signature.Type, bool) {
	switch n.kind {
	case nodeNumber:
		if n.isFloat() {
			return signature.Double, true
		}
		return signature.Int32, true
	case nodeString:
		return signature.String, true
	case nodeByteString:
		return signature.ByteString, true
	case nodeBoolean:
		return signature.Boolean, true
	case nodeNothing:
		return signature.Type{}, false
	case nodeJust:
		inner, ok := n.children[0].infer()
		if !ok {
			return signature.Type{}, false
		}
		return signature.MaybeOf(inner), true
	case nodeArray:
		element, ok := inferElement(n.children)
		if !ok {
			return signature.Type{}, false
		}
		return signature.ArrayOf(element), true
	case nodeDictionary:
		key, keyOK := inferElement(n.keys)
		value, valueOK := inferElement(n.values)
		if !keyOK || !valueOK {
			return signature.Type{}, false
		}
		entry, err := signature.DictEntryOf(key, value)
		if err != nil {
			return signature.Type{}, false
		}
		return signature.ArrayOf(entry), true
	case nodeTuple:
		members := make([]signature.Type, len(n.children))
		for index, child := range n.children {
			member, ok := child.infer()
			if !ok {
				return signature.Type{}, false
			}
			members[index] = member
		}
		return signature.TupleOf(members...), true
	case nodeBoxed:
		return signature.Variant, true
	case nodeTyped:
		return n.annotation, true
	}
	return signature.Type{}, false
}

// inferElement finds the common type of sibling nodes. The first
// sibling with a type of its own decides; bare numbers decide only
// when nothing else does, and then as double if any is a float.
func inferElement(nodes []*node) (signature.Type, bool) {
	sawNumber, sawFloat := false, false
	for _, child := range nodes {
		if child.kind == nodeNumber {
			sawNumber = true
			sawFloat = sawFloat || child.isFloat()
			continue
		}
		if inferred, ok := child.infer(); ok {
			return inferred, true
		}
	}
	switch {
	case sawFloat:
		return signature.Double, true
	case sawNumber:
		return signature.Int32, true
	}
	return signature.Type{}, false
}

func (n *node) isFloat() bool {
	text := strings.TrimLeft(n.text, "+-")
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		return false
	}
	return strings.ContainsAny(text, ".eE") || text == "inf" || text == "nan"
}

func (n *node) errorf(format string, args ...any) *ParseError {
	return &ParseError{Offset: n.offset, Message: fmt.Sprintf(format, args...)}
}

// build constructs the value of the definite type t denoted by n.
func (n *node) build(t signature.Type) (Value, error) {
	switch n.kind {
	case nodeTyped:
		if n.annotation == t {
			return n.children[0].build(t)
		}
		if element, err := t.Element(); err == nil && t.IsMaybe() && element == n.annotation {
			return n.buildJust(element)
		}
		return Value{}, n.errorf("annotation %q conflicts with expected type %q", n.annotation, t)
	case nodeNothing:
		if !t.IsMaybe() {
			return Value{}, n.errorf("nothing is not a value of type %q", t)
		}
		element, _ := t.Element()
		return NewMaybe(element, nil)
	case nodeJust:
		if !t.IsMaybe() {
			return Value{}, n.errorf("just is not a value of type %q", t)
		}
		element, _ := t.Element()
		child, err := n.children[0].build(element)
		if err != nil {
			return Value{}, err
		}
		return NewMaybe(element, &child)
	}

	if t.IsMaybe() {
		element, _ := t.Element()
		return n.buildJust(element)
	}

	switch n.kind {
	case nodeNumber:
		return n.buildNumber(t)
	case nodeBoolean:
		if t != signature.Boolean {
			return Value{}, n.errorf("boolean is not a value of type %q", t)
		}
		return NewBoolean(n.boolean), nil
	case nodeString:
		switch t {
		case signature.String:
			if err := CheckString(n.text); err != nil {
				return Value{}, n.errorf("%v", err)
			}
			return NewString(n.text), nil
		case signature.ObjectPath:
			value, err := NewObjectPath(n.text)
			if err != nil {
				return Value{}, n.errorf("%v", err)
			}
			return value, nil
		case signature.Signature:
			parsed, err := signature.Parse(n.text)
			if err != nil {
				return Value{}, n.errorf("%v", err)
			}
			return NewSignature(parsed), nil
		}
		return Value{}, n.errorf("string is not a value of type %q", t)
	case nodeByteString:
		if t != signature.ByteString {
			return Value{}, n.errorf("byte string is not a value of type %q", t)
		}
		return NewByteArray([]byte(n.text)), nil
	case nodeBoxed:
		if t != signature.Variant {
			return Value{}, n.errorf("boxed value is not a value of type %q", t)
		}
		inner := n.children[0]
		innerType, ok := inner.infer()
		if !ok {
			return Value{}, inner.errorf("cannot infer type of boxed value; add a type annotation")
		}
		child, err := inner.build(innerType)
		if err != nil {
			return Value{}, err
		}
		return NewVariant(child), nil
	case nodeArray:
		if !t.IsArray() {
			return Value{}, n.errorf("array is not a value of type %q", t)
		}
		element, _ := t.Element()
		children := make([]Value, len(n.children))
		for index, child := range n.children {
			value, err := child.build(element)
			if err != nil {
				return Value{}, err
			}
			children[index] = value
		}
		return NewArray(element, children)
	case nodeDictionary:
		return n.buildDictionary(t)
	case nodeTuple:
		if t.IsDictEntry() || !t.IsTuple() {
			return Value{}, n.errorf("tuple is not a value of type %q", t)
		}
		members, _ := t.Items()
		if len(members) != len(n.children) {
			return Value{}, n.errorf("tuple has %d members, type %q needs %d", len(n.children), t, len(members))
		}
		children := make([]Value, len(members))
		for index, child := range n.children {
			value, err := child.build(members[index])
			if err != nil {
				return Value{}, err
			}
			children[index] = value
		}
		return NewTuple(children...), nil
	}
	return Value{}, n.errorf("cannot build a value of type %q", t)
}

func (n *node) buildJust(element signature.Type) (Value, error) {
	child, err := n.build(element)
	if err != nil {
		return Value{}, err
	}
	return NewMaybe(element, &child)
}

func (n *node) buildDictionary(t signature.Type) (Value, error) {
	var entryType signature.Type
	switch {
	case t.IsDictionary():
		entryType, _ = t.Element()
	case t.IsDictEntry() && len(n.keys) == 1:
		entryType = t
	default:
		return Value{}, n.errorf("dictionary is not a value of type %q", t)
	}
	keyType, _ := entryType.Key()
	valueType, _ := entryType.Value()

	entries := make([]Value, len(n.keys))
	for index := range n.keys {
		key, err := n.keys[index].build(keyType)
		if err != nil {
			return Value{}, err
		}
		value, err := n.values[index].build(valueType)
		if err != nil {
			return Value{}, err
		}
		entry, err := NewDictEntry(key, value)
		if err != nil {
			return Value{}, n.errorf("%v", err)
		}
		entries[index] = entry
	}
	if t.IsDictEntry() {
		return entries[0], nil
	}
	return NewArray(entryType, entries)
}

func (n *node) buildNumber(t signature.Type) (Value, error) {
	if t == signature.Double {
		value, err := strconv.ParseFloat(n.text, 64)
		if err != nil {
			if integer, integerErr := strconv.ParseInt(n.text, 0, 64); integerErr == nil {
				return NewDouble(float64(integer)), nil
			}
			return Value{}, n.errorf("invalid double %q", n.text)
		}
		return NewDouble(value), nil
	}
	if n.isFloat() {
		return Value{}, n.errorf("floating point literal %q for integer type %q", n.text, t)
	}

	bitSize := 8 * t.FixedSize()
	switch t {
	case signature.Byte, signature.Uint16, signature.Uint32, signature.Uint64:
		value, err := strconv.ParseUint(n.text, 0, bitSize)
		if err != nil {
			return Value{}, n.errorf("invalid %s literal %q", classOf(t), n.text)
		}
		switch t {
		case signature.Byte:
			return NewByte(uint8(value)), nil
		case signature.Uint16:
			return NewUint16(uint16(value)), nil
		case signature.Uint32:
			return NewUint32(uint32(value)), nil
		}
		return NewUint64(value), nil

	case signature.Int16, signature.Int32, signature.Handle, signature.Int64:
		value, err := strconv.ParseInt(n.text, 0, bitSize)
		if err != nil {
			return Value{}, n.errorf("invalid %s literal %q", classOf(t), n.text)
		}
		switch t {
		case signature.Int16:
			return NewInt16(int16(value)), nil
		case signature.Int32:
			return NewInt32(int32(value)), nil
		case signature.Handle:
			return NewHandle(int32(value)), nil
		}
		return NewInt64(value), nil
	}
	return Value{}, n.errorf("number is not a value of type %q", t)
}
