// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/gvariant/lib/signature"
)

// MarshalYAML returns the tree of the held value as a YAML node.
// Mappings keep dictionary order and boxed values appear as their
// contents.
func (a Any) MarshalYAML() (any, error) {
	tree, err := a.Interface()
	if err != nil {
		return nil, err
	}
	return yamlNode(tree)
}

// UnmarshalYAML infers a value from a YAML node. Mappings become
// dictionaries in source order. yaml.v3 does not call this method for
// a null document, so a top-level null leaves the receiver empty;
// nested nulls become maybe-variant nothing. [ParseYAML] followed by
// [Marshal] gives nothing for both.
func (a *Any) UnmarshalYAML(node *yaml.Node) error {
	tree, err := yamlTree(node)
	if err != nil {
		return err
	}
	return a.setTree(tree)
}

// MarshalYAML returns m as an ordered YAML mapping.
func (m Map) MarshalYAML() (any, error) { return yamlNode(m) }

// MarshalYAML returns d as a YAML mapping of unboxed values.
func (d Dict) MarshalYAML() (any, error) {
	tree, err := d.tree()
	if err != nil {
		return nil, err
	}
	return yamlNode(tree)
}

// UnmarshalYAML reads a YAML mapping, inferring each value.
func (d *Dict) UnmarshalYAML(node *yaml.Node) error {
	var dynamic Any
	if err := dynamic.UnmarshalYAML(node); err != nil {
		return err
	}
	return d.UnmarshalVariant(dynamic.Value())
}

// MarshalYAML returns the [Pretty] text of v.
func (v Variant) MarshalYAML() (any, error) {
	if !v.value.IsValid() {
		return nil, &UnsupportedTypeError{Type: "empty codec.Variant"}
	}
	return string(NewPretty(v.value)), nil
}

// UnmarshalYAML parses a YAML string holding [Pretty] text.
func (v *Variant) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return err
	}
	value, err := Pretty(text).Value()
	if err != nil {
		return err
	}
	v.value = value
	return nil
}

// ParseYAML parses one YAML document into the ordered tree, with the
// same shapes as [ParseJSON]: mappings become [Map], sequences []any
// and numbers [json.Number].
func ParseYAML(data []byte) (any, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if document.Kind == 0 {
		return nil, fmt.Errorf("parsing YAML: empty document")
	}
	return yamlTree(&document)
}

func yamlTree(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return yamlTree(node.Content[0])
	case yaml.AliasNode:
		return yamlTree(node.Alias)
	case yaml.MappingNode:
		result := make(Map, 0, len(node.Content)/2)
		for index := 0; index+1 < len(node.Content); index += 2 {
			key, err := yamlTree(node.Content[index])
			if err != nil {
				return nil, err
			}
			value, err := yamlTree(node.Content[index+1])
			if err != nil {
				return nil, err
			}
			result = append(result, Entry{Key: key, Value: value})
		}
		return result, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := yamlTree(child)
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		return list, nil
	case yaml.ScalarNode:
		return yamlScalar(node)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
}

func yamlScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var value bool
		err := node.Decode(&value)
		return value, err
	case "!!int":
		var signed int64
		if err := node.Decode(&signed); err == nil {
			return json.Number(strconv.FormatInt(signed, 10)), nil
		}
		var unsigned uint64
		if err := node.Decode(&unsigned); err != nil {
			return nil, err
		}
		return json.Number(strconv.FormatUint(unsigned, 10)), nil
	case "!!float":
		var value float64
		if err := node.Decode(&value); err != nil {
			return nil, err
		}
		return json.Number(floatLiteral(value)), nil
	case "!!binary":
		// yaml.v3 base64-decodes !!binary only into a string.
		var value string
		if err := node.Decode(&value); err != nil {
			return nil, err
		}
		return []byte(value), nil
	}
	return node.Value, nil
}

func yamlNode(tree any) (*yaml.Node, error) {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}
	switch node := tree.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(node)), nil
	case uint8:
		return scalar("!!int", strconv.FormatUint(uint64(node), 10)), nil
	case int16:
		return scalar("!!int", strconv.FormatInt(int64(node), 10)), nil
	case uint16:
		return scalar("!!int", strconv.FormatUint(uint64(node), 10)), nil
	case int32:
		return scalar("!!int", strconv.FormatInt(int64(node), 10)), nil
	case uint32:
		return scalar("!!int", strconv.FormatUint(uint64(node), 10)), nil
	case int64:
		return scalar("!!int", strconv.FormatInt(node, 10)), nil
	case uint64:
		return scalar("!!int", strconv.FormatUint(node, 10)), nil
	case Handle:
		return scalar("!!int", strconv.FormatInt(int64(node), 10)), nil
	case float64:
		return scalar("!!float", yamlFloat(node)), nil
	case string:
		return scalar("!!str", node), nil
	case ObjectPath:
		return scalar("!!str", string(node)), nil
	case signature.Type:
		return scalar("!!str", node.String()), nil
	case []byte:
		return scalar("!!binary", base64.StdEncoding.EncodeToString(node)), nil
	case Boxed:
		return yamlNode(node.Value)
	case *any:
		return yamlNode(*node)
	case Map:
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, entry := range node {
			key, err := yamlNode(entry.Key)
			if err != nil {
				return nil, err
			}
			value, err := yamlNode(entry.Value)
			if err != nil {
				return nil, err
			}
			mapping.Content = append(mapping.Content, key, value)
		}
		return mapping, nil
	case []any:
		return yamlSequence(node)
	case Tuple:
		return yamlSequence(node)
	case Entry:
		return yamlSequence([]any{node.Key, node.Value})
	}
	var encoded yaml.Node
	if err := encoded.Encode(tree); err != nil {
		return nil, err
	}
	return &encoded, nil
}

func yamlSequence(list []any) (*yaml.Node, error) {
	sequence := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, item := range list {
		child, err := yamlNode(item)
		if err != nil {
			return nil, err
		}
		sequence.Content = append(sequence.Content, child)
	}
	return sequence, nil
}

func yamlFloat(value float64) string {
	switch {
	case math.IsNaN(value):
		return ".nan"
	case math.IsInf(value, 1):
		return ".inf"
	case math.IsInf(value, -1):
		return "-.inf"
	}
	return floatLiteral(value)
}

// floatLiteral formats value so that it never reads back as an
// integer.
func floatLiteral(value float64) string {
	text := strconv.FormatFloat(value, 'g', -1, 64)
	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		text += ".0"
	}
	return text
}
