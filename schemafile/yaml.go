package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/dstruct"
)

// ParseYAML parses a YAML declaration. Only the first document is read.
func ParseYAML(data []byte) (*dstruct.Schema, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid YAML: empty document")
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	root, err := yamlNode(&doc, nil)
	if err != nil {
		return nil, err
	}
	return dstruct.New(root)
}

func yamlNode(n *yaml.Node, p dstruct.Path) (*dstruct.Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, fmt.Errorf("invalid YAML: empty document")
		}
		return yamlNode(n.Content[0], p)
	case yaml.AliasNode:
		return yamlNode(n.Alias, p)
	case yaml.MappingNode:
		fields := make([]dstruct.Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode || k.Tag != "!!str" {
				return nil, atLine(k, &dstruct.SchemaError{Path: p.String(), Code: dstruct.CodeInvalidKey, Value: k.Value})
			}
			child, err := yamlNode(v, p.Key(k.Value))
			if err != nil {
				return nil, err
			}
			fields = append(fields, dstruct.F(k.Value, child))
		}
		return dstruct.Map(fields...), nil
	case yaml.SequenceNode:
		items := make([]*dstruct.Node, 0, len(n.Content))
		for i, c := range n.Content {
			child, err := yamlNode(c, p.Index(i))
			if err != nil {
				return nil, err
			}
			items = append(items, child)
		}
		node, err := listNode(items, p)
		if err != nil {
			return nil, atLine(n, err)
		}
		return node, nil
	case yaml.ScalarNode:
		// Kind names are matched on the raw text, so an unquoted null declares
		// a null leaf.
		node, err := leafNode(n.Value, p)
		if err != nil {
			return nil, atLine(n, err)
		}
		return node, nil
	}
	return nil, fmt.Errorf("invalid YAML: unsupported node at line %d", n.Line)
}

func atLine(n *yaml.Node, err error) error {
	return fmt.Errorf("line %d: %w", n.Line, err)
}

// EncodeYAML renders s as a YAML declaration, keeping map key order.
func EncodeYAML(s *dstruct.Schema) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(s.Root())); err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func toYAML(n *dstruct.Node) *yaml.Node {
	switch n.Shape() {
	case dstruct.ShapeMap:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range n.Keys() {
			child, _ := n.Field(k)
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toYAML(child))
		}
		return out
	case dstruct.ShapeList:
		return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{toYAML(n.Elem())}}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Kind().String()}
}
