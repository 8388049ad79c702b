package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseJSONDef(t *testing.T, src string) *Definition {
	t.Helper()
	v, err := DecodeJSON(strings.NewReader(src))
	require.NoError(t, err)
	return ParseDefinition(v)
}

func TestParseDefinition(t *testing.T) {
	t.Run("Object", func(t *testing.T) {
		d := parseJSONDef(t, `{"type": "object", "description": "A pet", "properties": {"name": {"type": "string"}, "tag": {"$ref": "#/components/schemas/Tag"}}}`)
		require.Len(t, d.Properties, 2)
		assert.Equal(t, "name", d.Properties[0].Name)
		assert.Equal(t, "string", d.Properties[0].Schema.Type)
		assert.Equal(t, "#/components/schemas/Tag", d.Properties[1].Schema.Ref)
		assert.Equal(t, "A pet", d.Description)
		assert.True(t, d.HasProperties())
		assert.False(t, d.IsPrimitive())
	})

	t.Run("EmptyProperties", func(t *testing.T) {
		d := parseJSONDef(t, `{"type": "object", "properties": {}}`)
		assert.True(t, d.HasProperties())
		assert.Empty(t, d.Properties)
	})

	t.Run("TypeList", func(t *testing.T) {
		d := parseJSONDef(t, `{"type": ["null", "string"]}`)
		assert.Equal(t, "string", d.Type)
		assert.True(t, d.Nullable)
		assert.True(t, d.IsPrimitive())
	})

	t.Run("Alternatives", func(t *testing.T) {
		d := parseJSONDef(t, `{"oneOf": [{"$ref": "B"}], "anyOf": [{"type": "string"}]}`)
		require.Len(t, d.Alternatives, 2)
		assert.Equal(t, "string", d.Alternatives[0].Type, "anyOf entries come first")
		assert.Equal(t, "B", d.Alternatives[1].Ref)
		assert.Equal(t, "anyOf", d.Combinator)
	})

	t.Run("TupleItems", func(t *testing.T) {
		d := parseJSONDef(t, `{"type": "array", "items": [{"type": "integer"}, {"type": "string"}]}`)
		require.NotNil(t, d.Items)
		assert.Equal(t, "integer", d.Items.Type)
		assert.Len(t, d.Issues, 1)
	})

	t.Run("Enum", func(t *testing.T) {
		d := parseJSONDef(t, `{"type": "string", "enum": ["available", "sold", 3, null]}`)
		assert.Equal(t, []string{"available", "sold", "3", "null"}, d.Enum)
	})

	t.Run("WrongShapes", func(t *testing.T) {
		d := parseJSONDef(t, `{"$ref": 3, "type": {}, "properties": [], "anyOf": "x"}`)
		assert.Empty(t, d.Ref)
		assert.Empty(t, d.Type)
		assert.Nil(t, d.Properties)
		assert.Len(t, d.Issues, 4)
	})

	t.Run("NotAMapping", func(t *testing.T) {
		d := ParseDefinition([]any{"x"})
		assert.Equal(t, "expected a mapping, got list", d.Malformed)
	})
}

func TestRefName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"#/components/schemas/Pet", "Pet"},
		{"#/definitions/Order", "Order"},
		{"#/$defs/Node", "Node"},
		{"Pet", "Pet"},
		{"#/components/schemas/a~1b", "a/b"},
		{"#/components/schemas/a~0b", "a~b"},
		{"other.yaml#/components/schemas/Pet", "Pet"},
	}
	for _, tt := range tests {
		if got := RefName(tt.ref); got != tt.want {
			t.Errorf("RefName(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
