package graph

import "fmt"

// Kind classifies a schema component.
type Kind int

const (
	// KindSimple is a primitive type (string, integer, ...) or an unknown one.
	KindSimple Kind = iota
	// KindArray is a list whose element type is ItemRef or ItemLabel.
	KindArray
	// KindObject is a record with an ordered property table.
	KindObject
	// KindReference is an alias for another component.
	KindReference
	// KindAnyOf is a union of alternatives.
	KindAnyOf
)

var kindNames = [...]string{"Simple", "Array", "Object", "Reference", "AnyOf"}

// String returns the kind name, e.g. "Object".
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", b)
}

// EdgeKind classifies a structural relationship.
type EdgeKind int

const (
	// EdgeContains links an object to the component a property points at.
	EdgeContains EdgeKind = iota
	// EdgeArrayOf links an array to its element component.
	EdgeArrayOf
	// EdgeReferences links a reference to its target.
	EdgeReferences
	// EdgeAlternativeOf links a union to one of its alternatives.
	EdgeAlternativeOf
)

var edgeKindNames = [...]string{"Contains", "ArrayOf", "References", "AlternativeOf"}

// String returns the edge kind name, e.g. "References".
func (k EdgeKind) String() string {
	if k < 0 || int(k) >= len(edgeKindNames) {
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
	return edgeKindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k EdgeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EdgeKind) UnmarshalText(b []byte) error {
	for i, name := range edgeKindNames {
		if name == string(b) {
			*k = EdgeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown edge kind %q", b)
}

// Primitive labels for nodes that carry no usable type information.
const (
	PrimitiveUnknown    = "unknown"
	PrimitiveUnresolved = "unresolved"
)

// Property is one row of an object's property table.
type Property struct {
	Name string `json:"name"`
	// Label is the type descriptor text: a primitive type, "array of X",
	// "anyOf: a, b" or the name of the referenced component.
	Label string `json:"label"`
	// Target is the node the property points at, or "" for primitives.
	Target string `json:"target,omitempty"`
}

// Alternative is one member of a union.
type Alternative struct {
	Label  string `json:"label"`
	Target string `json:"target,omitempty"`
}

// Node is one schema component. Which fields are set depends on Kind.
type Node struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	// Simple
	PrimitiveType string   `json:"primitive_type,omitempty"`
	Format        string   `json:"format,omitempty"`
	Enum          []string `json:"enum,omitempty"`

	// Object
	Properties           []Property `json:"properties,omitempty"`
	AdditionalProperties *Property  `json:"additional_properties,omitempty"`

	// Array
	ItemRef   string `json:"item_ref,omitempty"`
	ItemLabel string `json:"item_label,omitempty"`

	// Reference
	TargetRef string `json:"target_ref,omitempty"`

	// AnyOf
	Alternatives []Alternative `json:"alternatives,omitempty"`
	Combinator   string        `json:"combinator,omitempty"`

	Description string `json:"description,omitempty"`
	Nullable    bool   `json:"nullable,omitempty"`

	// Unresolved marks a placeholder for a reference target that is not declared.
	Unresolved bool `json:"unresolved,omitempty"`
	// Synthetic marks a node created for an inline structured schema.
	Synthetic bool `json:"synthetic,omitempty"`
	// Order is the discovery index: declaration order for components,
	// followed by synthetic and placeholder nodes in the order they were found.
	Order int `json:"order"`
}

// Degraded reports whether the node stands in for missing information:
// an unresolved placeholder or a component without a usable type.
func (n *Node) Degraded() bool {
	return n.Unresolved || (n.Kind == KindSimple && n.PrimitiveType == PrimitiveUnknown)
}

// Summary returns the one-line description drawn under the node name.
func (n *Node) Summary() string {
	switch n.Kind {
	case KindArray:
		return "array of " + n.ItemLabel
	case KindObject:
		return "object"
	case KindReference:
		return "reference to " + n.TargetRef
	case KindAnyOf:
		labels := make([]string, len(n.Alternatives))
		for i, a := range n.Alternatives {
			labels[i] = a.Label
		}
		return unionLabel(n.Combinator, labels)
	default:
		return n.PrimitiveType
	}
}

// Edge is a directed structural relationship between two nodes.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
	// Label names the relationship: a property name, "items",
	// "references", "additionalProperties" or "anyOf[i]".
	Label string `json:"label,omitempty"`
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool { return e.From == e.To }

// WarningCode identifies a recoverable build condition.
type WarningCode string

// Warning codes.
const (
	WarnUnknownType         WarningCode = "UNKNOWN_TYPE"
	WarnUnresolvedReference WarningCode = "UNRESOLVED_REFERENCE"
	WarnMalformedEntry      WarningCode = "MALFORMED_ENTRY"
	WarnIgnoredKeyword      WarningCode = "IGNORED_KEYWORD"
)

// Warning is a non-fatal condition found while building the graph.
type Warning struct {
	Code    WarningCode `json:"code"`
	NodeID  string      `json:"node_id"`
	Message string      `json:"message"`
}

// String formats the warning for logs.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Code, w.NodeID, w.Message)
}
