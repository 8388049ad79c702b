package schema

import (
	"fmt"
	"strings"
)

// Definition is one schema definition with the fields schemagraph recognizes.
// Unrecognized keywords are ignored.
type Definition struct {
	// Ref is the raw reference indicator ($ref), e.g. "#/components/schemas/Pet".
	Ref string
	// Type is the declared type tag. For a list of types the first non-null
	// entry is used and Nullable is set.
	Type     string
	Nullable bool

	// Properties holds the object properties in declaration order. It is nil
	// when the keyword is absent and empty (non-nil) for "properties: {}".
	Properties []Property
	// Items is the array item schema.
	Items *Definition
	// Alternatives holds the anyOf entries followed by the oneOf entries.
	Alternatives []*Definition
	// Combinator is "anyOf" or "oneOf", whichever supplied the first alternative.
	Combinator string
	// AdditionalProperties is set when additionalProperties is a schema.
	AdditionalProperties *Definition

	Enum        []string
	Format      string
	Title       string
	Description string

	// Malformed describes why the raw entry could not be read as a mapping.
	Malformed string
	// Issues lists recognized keywords that were ignored because of their shape.
	Issues []string
}

// Property is a named object property.
type Property struct {
	Name   string
	Schema *Definition
}

// HasProperties reports whether the properties keyword was present.
func (d *Definition) HasProperties() bool { return d.Properties != nil }

// IsPrimitive reports whether d carries nothing but a type tag (and
// annotations), so it can be drawn as a label instead of a node.
func (d *Definition) IsPrimitive() bool {
	return d.Ref == "" &&
		len(d.Alternatives) == 0 &&
		d.Items == nil &&
		d.Type != "array" &&
		d.Properties == nil &&
		d.AdditionalProperties == nil
}

// RefName returns the component name a reference indicator points at: the
// last segment of a JSON Pointer fragment with ~1 and ~0 unescaped, or the
// whole string when it has no slash.
func RefName(ref string) string {
	name := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		name = ref[i+1:]
	}
	name = strings.ReplaceAll(name, "~1", "/")
	return strings.ReplaceAll(name, "~0", "~")
}

// ParseDefinition reads a decoded value as a schema definition. It never
// fails: a value that is not a mapping yields a Definition with Malformed set.
func ParseDefinition(v any) *Definition {
	return parseDefinition(v, 0)
}

func parseDefinition(v any, depth int) *Definition {
	obj, ok := v.(*Object)
	if !ok {
		return &Definition{Malformed: fmt.Sprintf("expected a mapping, got %s", describe(v))}
	}
	if depth > maxDepth {
		return &Definition{Malformed: "definition nested too deeply"}
	}

	d := &Definition{}
	note := func(format string, args ...any) {
		d.Issues = append(d.Issues, fmt.Sprintf(format, args...))
	}

	if raw, ok := obj.Get("$ref"); ok {
		if s, ok := raw.(string); ok && s != "" {
			d.Ref = s
		} else {
			note("$ref is %s, not a string", describe(raw))
		}
	}

	if raw, ok := obj.Get("type"); ok {
		switch t := raw.(type) {
		case string:
			d.Type = t
		case []any:
			for _, item := range t {
				s, _ := item.(string)
				if s == "null" {
					d.Nullable = true
					continue
				}
				if d.Type == "" && s != "" {
					d.Type = s
				}
			}
		default:
			note("type is %s, not a string", describe(raw))
		}
	}
	if b, ok := obj.Get("nullable"); ok {
		if nb, ok := b.(bool); ok && nb {
			d.Nullable = true
		}
	}

	if raw, ok := obj.Get("properties"); ok {
		if props, ok := raw.(*Object); ok {
			d.Properties = make([]Property, 0, props.Len())
			for _, name := range props.Keys() {
				pv, _ := props.Get(name)
				d.Properties = append(d.Properties, Property{Name: name, Schema: parseDefinition(pv, depth+1)})
			}
		} else {
			note("properties is %s, not a mapping", describe(raw))
		}
	}

	if raw, ok := obj.Get("items"); ok {
		switch t := raw.(type) {
		case *Object:
			d.Items = parseDefinition(t, depth+1)
		case []any:
			// Tuple form: draw the first item schema.
			if len(t) > 0 {
				d.Items = parseDefinition(t[0], depth+1)
			}
			note("items is a tuple; only the first schema is drawn")
		default:
			note("items is %s, not a mapping", describe(raw))
		}
	}

	for _, kw := range []string{"anyOf", "oneOf"} {
		raw, ok := obj.Get(kw)
		if !ok {
			continue
		}
		list, ok := raw.([]any)
		if !ok {
			note("%s is %s, not a list", kw, describe(raw))
			continue
		}
		if len(list) > 0 && d.Combinator == "" {
			d.Combinator = kw
		}
		for _, item := range list {
			d.Alternatives = append(d.Alternatives, parseDefinition(item, depth+1))
		}
	}

	if raw, ok := obj.Get("additionalProperties"); ok {
		if ap, ok := raw.(*Object); ok {
			d.AdditionalProperties = parseDefinition(ap, depth+1)
		}
	}

	if raw, ok := obj.Get("enum"); ok {
		if list, ok := raw.([]any); ok {
			for _, item := range list {
				if item == nil {
					d.Enum = append(d.Enum, "null")
					continue
				}
				d.Enum = append(d.Enum, fmt.Sprint(item))
			}
		} else {
			note("enum is %s, not a list", describe(raw))
		}
	}

	d.Format, _ = obj.String("format")
	d.Title, _ = obj.String("title")
	d.Description, _ = obj.String("description")
	return d
}
