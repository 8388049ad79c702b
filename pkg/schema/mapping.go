package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
)

// Entry is one named component definition.
type Entry struct {
	Name string
	Def  *Definition
}

// Mapping is the ordered set of component definitions the graph builder
// consumes. Names are unique; the order is declaration order.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Add appends a definition. Adding an existing name replaces its definition
// in place, matching how the decoders treat duplicate keys.
func (m *Mapping) Add(name string, def *Definition) {
	if i, ok := m.index[name]; ok {
		m.entries[i].Def = def
		return
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, Entry{Name: name, Def: def})
}

// Entries returns the definitions in declaration order.
// The returned slice must not be modified.
func (m *Mapping) Entries() []Entry { return m.entries }

// Len returns the number of definitions.
func (m *Mapping) Len() int { return len(m.entries) }

// Lookup returns the definition registered under name.
func (m *Mapping) Lookup(name string) (*Definition, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.entries[i].Def, true
}

// Has reports whether name is a declared component.
func (m *Mapping) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Position returns the declaration index of name, or -1.
func (m *Mapping) Position(name string) int {
	if i, ok := m.index[name]; ok {
		return i
	}
	return -1
}

// Components locates the component mapping inside a decoded document and
// parses every entry.
//
// The search order is components.schemas (OpenAPI 3), definitions (Swagger 2,
// JSON Schema draft 7), $defs (JSON Schema 2020-12). A document that has none
// of these and is not an interface description itself (no "openapi" or
// "swagger" key) is treated as the mapping. An empty (null) section gives an
// empty mapping; any other section that is not a mapping is an INVALID_SCHEMA
// error.
func Components(root any) (*Mapping, error) {
	doc, ok := root.(*Object)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidSchema, "schema document is a %s, not a mapping", describe(root))
	}

	section := any(doc)
	switch {
	case doc.Has("components"):
		if mustGet(doc, "components") == nil {
			return NewMapping(), nil
		}
		comps, ok := doc.Object("components")
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeInvalidSchema, "components is a %s, not a mapping", describe(mustGet(doc, "components")))
		}
		v, ok := comps.Get("schemas")
		if !ok {
			return NewMapping(), nil
		}
		section = v
	case doc.Has("definitions"):
		section = mustGet(doc, "definitions")
	case doc.Has("$defs"):
		section = mustGet(doc, "$defs")
	case doc.Has("openapi") || doc.Has("swagger"):
		return NewMapping(), nil
	}

	if section == nil {
		return NewMapping(), nil
	}
	obj, ok := section.(*Object)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidSchema, "schema mapping is a %s, not a mapping", describe(section))
	}

	m := NewMapping()
	for _, name := range obj.Keys() {
		v, _ := obj.Get(name)
		m.Add(name, ParseDefinition(v))
	}
	return m, nil
}

func mustGet(o *Object, key string) any {
	v, _ := o.Get(key)
	return v
}

// Format identifies a schema file encoding.
type Format string

// Supported schema file encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the encoding from a file extension. It does not
// touch the filesystem.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	if path == "" {
		return "", apperrors.New(apperrors.ErrCodeInvalidPath, "schema path cannot be empty")
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidFormat,
		"unsupported schema file %q (must be .json, .yaml, .yml or .toml)", filepath.Base(path))
}

// Decode decodes raw bytes in the given encoding into an ordered value tree.
func Decode(data []byte, format Format) (any, error) {
	var (
		v   any
		err error
	)
	switch format {
	case FormatJSON:
		v, err = DecodeJSON(bytes.NewReader(data))
	case FormatYAML:
		v, err = DecodeYAML(data)
	case FormatTOML:
		v, err = DecodeTOML(data)
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "unknown schema format %q", format)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidSchema, err, "decode %s", format)
	}
	return v, nil
}

// Parse decodes raw bytes and locates the component mapping.
func Parse(data []byte, format Format) (*Mapping, error) {
	root, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Components(root)
}

// Load reads the schema file at path and returns its component mapping.
// The encoding is chosen by file extension.
func Load(path string) (*Mapping, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "schema file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
