package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// maxDepth bounds nesting while converting decoded documents.
const maxDepth = 256

// Aliases are expanded into copies, so a converted YAML document may hold at
// most aliasExpansion times as many nodes as the source document, plus
// minExpansion. Nested aliases ("billion laughs") hit the limit quickly.
const (
	aliasExpansion = 10
	minExpansion   = 10000
)

// DecodeJSON decodes a JSON document into an ordered value tree.
//
// encoding/json has no ordered map type, so the document is walked token by
// token. Integers that fit in int64 are returned as int64, other numbers as
// float64.
func DecodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeJSONValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder, depth int) (any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("document nested deeper than %d levels", maxDepth)
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not a string", kt)
				}
				v, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			list := []any{}
			for dec.More() {
				v, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", t, err)
		}
		return f, nil
	default:
		return t, nil
	}
}

// DecodeYAML decodes a YAML document into an ordered value tree.
// Aliases are expanded and merge keys (<<) are applied without overriding
// keys that the mapping sets itself. An empty document decodes to nil.
func DecodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	c := &yamlConverter{limit: aliasExpansion*countYAMLNodes(&doc) + minExpansion}
	return c.convert(&doc, 0)
}

// countYAMLNodes counts the nodes of a document without following aliases.
func countYAMLNodes(n *yaml.Node) int {
	count := 1
	for _, c := range n.Content {
		count += countYAMLNodes(c)
	}
	return count
}

type yamlConverter struct {
	limit int
	nodes int
}

func (c *yamlConverter) convert(n *yaml.Node, depth int) (any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("document nested deeper than %d levels", maxDepth)
	}
	c.nodes++
	if c.nodes > c.limit {
		return nil, fmt.Errorf("line %d: aliases expand the document beyond %d nodes", n.Line, c.limit)
	}

	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0], depth+1)
	case yaml.AliasNode:
		return c.convert(n.Alias, depth+1)
	case yaml.MappingNode:
		obj := NewObject()
		var merges []*Object
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			val, err := c.convert(v, depth+1)
			if err != nil {
				return nil, err
			}
			if k.Tag == "!!merge" {
				merges = append(merges, mergeSources(val)...)
				continue
			}
			obj.Set(k.Value, val)
		}
		for _, src := range merges {
			for _, key := range src.Keys() {
				if !obj.Has(key) {
					v, _ := src.Get(key)
					obj.Set(key, v)
				}
			}
		}
		return obj, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.convert(item, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		switch t := v.(type) {
		case nil, string, bool, float64, int64:
			return t, nil
		case int:
			return int64(t), nil
		case uint64:
			return float64(t), nil
		default:
			return n.Value, nil
		}
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

// mergeSources returns the mappings referenced by a merge key value, which is
// either a single mapping or a list of mappings.
func mergeSources(v any) []*Object {
	switch t := v.(type) {
	case *Object:
		return []*Object{t}
	case []any:
		var out []*Object
		for _, item := range t {
			if obj, ok := item.(*Object); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}

// DecodeTOML decodes a TOML document into an ordered value tree.
//
// The order comes from the decoder's key metadata. Keys the metadata does not
// list in document order (for example inside arrays of tables) are added
// afterwards in lexicographic order.
func DecodeTOML(data []byte) (any, error) {
	var raw map[string]any
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	if err != nil {
		return nil, err
	}

	root := NewObject()
	for _, key := range md.Keys() {
		placeTOMLKey(root, raw, key)
	}
	fillTOML(root, raw)
	return root, nil
}

func placeTOMLKey(root *Object, raw map[string]any, key toml.Key) {
	obj, cur := root, raw
	for i, part := range key {
		v, ok := cur[part]
		if !ok {
			return
		}
		if m, isTable := v.(map[string]any); isTable {
			child, exists := obj.Object(part)
			if !exists {
				child = NewObject()
				obj.Set(part, child)
			}
			obj, cur = child, m
			continue
		}
		if i != len(key)-1 {
			// The path runs through an array of tables.
			return
		}
		if !obj.Has(part) {
			obj.Set(part, fromTOMLValue(v))
		}
		return
	}
}

// fillTOML adds every key of raw that placeTOMLKey did not place.
func fillTOML(obj *Object, raw map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		v := raw[k]
		if m, isTable := v.(map[string]any); isTable {
			child, exists := obj.Object(k)
			if !exists {
				child = NewObject()
				obj.Set(k, child)
			}
			fillTOML(child, m)
			continue
		}
		if !obj.Has(k) {
			obj.Set(k, fromTOMLValue(v))
		}
	}
}

func fromTOMLValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		obj := NewObject()
		fillTOML(obj, t)
		return obj
	case []map[string]any:
		list := make([]any, len(t))
		for i, m := range t {
			list[i] = fromTOMLValue(m)
		}
		return list
	case []any:
		list := make([]any, len(t))
		for i, item := range t {
			list[i] = fromTOMLValue(item)
		}
		return list
	case string, bool, int64, float64:
		return t
	default:
		return fmt.Sprint(t)
	}
}
