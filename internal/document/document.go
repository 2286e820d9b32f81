// Package document converts between YAML/JSON bytes and the plain values
// the schema package works on.
//
// Mappings decode into *schema.Map so key order survives the round trip.
// JSON and JSONC input is accepted: comments and trailing commas are
// stripped with github.com/tidwall/jsonc and the result is parsed by
// gopkg.in/yaml.v3, since JSON is a subset of YAML 1.2 flow syntax.
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/dev-compose/internal/schema"
)

const mergeTag = "!!merge"

// ReadFile reads and decodes the document at path. The file extension
// selects JSONC preprocessing for ".json" and ".jsonc".
func ReadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, path)
}

// Decode parses data into a document value. name is only used to pick the
// input dialect and to label errors.
func Decode(data []byte, name string) (any, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &schema.StructuralError{Message: fmt.Sprintf("%s: %v", name, err)}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		// Empty input decodes to a document node without content.
		return nil, nil
	}
	return fromNode(root.Content[0])
}

// fromNode converts a yaml.v3 node tree into document values.
func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return fromMapping(n)
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return nil, &schema.StructuralError{Message: fmt.Sprintf("line %d: unsupported YAML node", n.Line)}
	}
}

// fromMapping builds an ordered map. Keys written in the mapping itself
// take precedence over keys pulled in through "<<" merge keys, regardless
// of position. A key written twice is an error.
func fromMapping(n *yaml.Node) (*schema.Map, error) {
	explicit := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if k.ShortTag() == mergeTag {
			continue
		}
		if explicit[k.Value] {
			return nil, &schema.StructuralError{
				Message: fmt.Sprintf("line %d: duplicate key %q", k.Line, k.Value),
			}
		}
		explicit[k.Value] = true
	}

	out := schema.NewMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.ShortTag() == mergeTag {
			if err := mergeInto(out, v, explicit); err != nil {
				return nil, err
			}
			continue
		}
		if k.Kind != yaml.ScalarNode {
			return nil, &schema.StructuralError{Message: fmt.Sprintf("line %d: mapping keys must be scalars", k.Line)}
		}
		value, err := fromNode(v)
		if err != nil {
			return nil, err
		}
		out.Set(k.Value, value)
	}
	return out, nil
}

// mergeInto copies the entries of a "<<" value (a mapping, an alias to
// one, or a sequence of those) into out without touching explicit keys or
// keys an earlier merge already supplied.
func mergeInto(out *schema.Map, src *yaml.Node, explicit map[string]bool) error {
	if src.Kind == yaml.SequenceNode {
		for _, c := range src.Content {
			if err := mergeInto(out, c, explicit); err != nil {
				return err
			}
		}
		return nil
	}

	v, err := fromNode(src)
	if err != nil {
		return err
	}
	m, ok := v.(*schema.Map)
	if !ok {
		return &schema.StructuralError{Message: fmt.Sprintf("line %d: merge key value must be a mapping", src.Line)}
	}
	for _, key := range m.Keys() {
		if explicit[key] || out.Has(key) {
			continue
		}
		value, _ := m.Get(key)
		out.Set(key, value)
	}
	return nil
}

// fromScalar resolves a scalar by its YAML tag. Tags without a Go
// counterpart (timestamps, binary) are kept as their source text.
func fromScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, &schema.StructuralError{Message: fmt.Sprintf("line %d: %v", n.Line, err)}
		}
		return b, nil
	case "!!int":
		var i int
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return n.Value, nil
		}
		return f, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, &schema.StructuralError{Message: fmt.Sprintf("line %d: %v", n.Line, err)}
		}
		return f, nil
	default:
		return n.Value, nil
	}
}

// Encode renders a document value as YAML, keeping map key order.
func Encode(v any) ([]byte, error) {
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// toNode converts a document value into a yaml.v3 node tree.
func toNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *schema.Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range t.Keys() {
			value, _ := t.Get(key)
			child, err := toNode(value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				child,
			)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			child, err := toNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	default:
		// Scalars, and anything else yaml.v3 knows how to marshal.
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode %T as YAML: %w", v, err)
		}
		return n, nil
	}
}
