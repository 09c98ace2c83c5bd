package healthcheck

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/angeloszaimis/pkghealth/internal/ordered"
)

const packageField = "package"

// Field is one member of a health record. Values stay raw JSON; only the
// package name is interpreted.
type Field struct {
	Name  string
	Value json.RawMessage
}

// Record is a health record with its fields in document order.
type Record struct {
	fields []Field
}

func NewRecord(fields ...Field) Record {
	return Record{fields: fields}
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var fields []Field
	index := make(map[string]int)

	err := ordered.DecodeObject(data, func(name string, raw json.RawMessage) error {
		value := append(json.RawMessage(nil), raw...)
		if i, seen := index[name]; seen {
			fields[i].Value = value
			return nil
		}
		index[name] = len(fields)
		fields = append(fields, Field{Name: name, Value: value})
		return nil
	})
	if err != nil {
		return err
	}

	r.fields = fields
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := json.Compact(&buf, f.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the record as a block mapping in field order.
func (r Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r.fields {
		var doc yaml.Node
		if err := yaml.Unmarshal(f.Value, &doc); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if len(doc.Content) > 0 {
			value = doc.Content[0]
		}
		blockStyle(value)

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			value,
		)
	}
	return node, nil
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// Package returns the package name, or "" when the record has none.
func (r Record) Package() string {
	raw, ok := r.Get(packageField)
	if !ok {
		return ""
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return ""
	}
	return name
}

func (r Record) Get(name string) (json.RawMessage, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r Record) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid record: %v>", err)
	}
	return string(b)
}
