// Package schema decodes API interface descriptions into an ordered mapping of
// named schema definitions.
//
// # Overview
//
// schemagraph draws the component schemas of an interface description (usually
// the components.schemas section of an OpenAPI document). This package is the
// only place that touches raw file bytes. It turns JSON, YAML or TOML into an
// [Object] tree that remembers key order, locates the component mapping inside
// it, and parses each entry into a [Definition].
//
// Key order matters: the graph builder uses declaration order as the stable
// node order, and object properties are drawn in the order they were written.
// The standard library decoders lose that order, so every decoder here builds
// [Object] values explicitly.
//
// # Leniency
//
// Parsing a single definition never fails. Fields with an unexpected shape are
// ignored and described in [Definition.Issues], and an entry that is not a
// mapping at all is marked [Definition.Malformed]. The only fatal condition is
// a document whose component section is not a mapping, reported by
// [Components] with the INVALID_SCHEMA error code.
//
// # Usage
//
//	m, err := schema.Load("openapi.yaml")
//	if err != nil {
//	    return err
//	}
//	for _, e := range m.Entries() {
//	    fmt.Println(e.Name, e.Def.Type)
//	}
package schema
