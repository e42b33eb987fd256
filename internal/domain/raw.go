package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// RawValue is a JSON value carried through the job unchanged. Object key
// order and number literals stay as they were written; only insignificant
// whitespace is dropped.
type RawValue []byte

// MarshalJSON returns the stored value, or null when empty.
func (v RawValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// UnmarshalJSON stores a compacted copy of data. A JSON null leaves v empty.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = nil
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*v = RawValue(buf.Bytes())
	return nil
}

// MarshalYAML renders the value as a block-style YAML node with the same key
// order. Strings are quoted only where YAML needs it.
func (v RawValue) MarshalYAML() (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(v, &doc); err != nil {
		return nil, fmt.Errorf("convert raw value to yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	node := doc.Content[0]
	clearStyle(node)
	return node, nil
}

// UnmarshalYAML converts the node to JSON, keeping mapping order.
func (v *RawValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*v = nil
		return nil
	}
	data, err := nodeJSON(value)
	if err != nil {
		return err
	}
	*v = RawValue(data)
	return nil
}

// truthy reports whether the value would count as set in a JavaScript
// `a || b` check: null, false, 0 and "" do not.
func (v RawValue) truthy() bool {
	s := string(bytes.TrimSpace(v))
	switch s {
	case "", "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0
	}
	return true
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

func nodeJSON(n *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNodeJSON(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNodeJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNodeJSON(buf, n.Content[0])
	case yaml.AliasNode:
		return writeNodeJSON(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := marshalNoEscape(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNodeJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNodeJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		b, err := marshalNoEscape(v)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		buf.Write(b)
	}
	return nil
}
