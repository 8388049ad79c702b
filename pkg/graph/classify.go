package graph

import (
	"strings"

	"github.com/matzehuels/schemagraph/pkg/schema"
)

// Classify returns the kind a definition is drawn as. The precedence is
// fixed: reference, then union, then array, then object, then simple.
// A nil or malformed definition is simple.
func Classify(d *schema.Definition) Kind {
	switch {
	case d == nil || d.Malformed != "":
		return KindSimple
	case d.Ref != "":
		return KindReference
	case len(d.Alternatives) > 0:
		return KindAnyOf
	case d.Type == "array" || d.Items != nil:
		return KindArray
	case d.HasProperties() || d.AdditionalProperties != nil || d.Type == "object":
		return KindObject
	default:
		return KindSimple
	}
}

// needsNode reports whether an inline definition is structured enough to be
// drawn as its own node rather than collapsed into a label.
func needsNode(d *schema.Definition) bool {
	switch Classify(d) {
	case KindAnyOf:
		return true
	case KindObject:
		return len(d.Properties) > 0 || d.AdditionalProperties != nil
	}
	return false
}

// Label returns the descriptor text for a definition used in place: a
// primitive type, the referenced component name, "array of X" or
// "anyOf: a, b". It never resolves anything and terminates on any input.
func Label(d *schema.Definition) string {
	switch Classify(d) {
	case KindReference:
		return schema.RefName(d.Ref)
	case KindAnyOf:
		labels := make([]string, len(d.Alternatives))
		for i, alt := range d.Alternatives {
			labels[i] = Label(alt)
		}
		return unionLabel(d.Combinator, labels)
	case KindArray:
		if d.Items == nil {
			return "array of " + PrimitiveUnknown
		}
		return "array of " + Label(d.Items)
	case KindObject:
		return "object"
	default:
		if d == nil || d.Type == "" {
			return PrimitiveUnknown
		}
		return d.Type
	}
}

func unionLabel(combinator string, labels []string) string {
	if combinator == "" {
		combinator = "anyOf"
	}
	return combinator + ": " + strings.Join(labels, ", ")
}
