package graph

import (
	"fmt"
	"strconv"

	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
	"github.com/matzehuels/schemagraph/pkg/schema"
)

type state uint8

const (
	statePending state = iota + 1
	stateInProgress
	stateDone
)

type task struct {
	id  string
	def *schema.Definition
}

type builder struct {
	m          *schema.Mapping
	g          *Graph
	state      map[string]state
	queue      []task
	unresolved map[string]string
}

// Build classifies every entry of m and derives the edge list.
//
// Components become nodes in declaration order. Synthetic nodes for inline
// structured schemas and placeholders for unresolved references follow in
// the order they are discovered. Build only fails for a nil mapping; every
// other problem is recorded as a [Warning] and degrades the affected node.
func Build(m *schema.Mapping) (*Graph, error) {
	if m == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidSchema, "schema mapping is nil")
	}

	b := &builder{
		m:          m,
		g:          newGraph(),
		state:      make(map[string]state, m.Len()),
		unresolved: make(map[string]string),
	}

	// Reserve every component first so references resolve by name
	// regardless of declaration order.
	for _, e := range m.Entries() {
		b.g.addNode(&Node{ID: e.Name})
		b.enqueue(e.Name, e.Def)
	}
	for len(b.queue) > 0 {
		t := b.queue[0]
		b.queue = b.queue[1:]
		b.classify(t)
	}

	b.deriveEdges()
	return b.g, nil
}

func (b *builder) enqueue(id string, def *schema.Definition) {
	b.state[id] = statePending
	b.queue = append(b.queue, task{id: id, def: def})
}

func (b *builder) warn(code WarningCode, id, format string, args ...any) {
	b.g.warnings = append(b.g.warnings, Warning{Code: code, NodeID: id, Message: fmt.Sprintf(format, args...)})
}

// classify fills in a reserved node. Each node is classified exactly once;
// anything it refers to is resolved by name or queued, never classified
// recursively.
func (b *builder) classify(t task) {
	if b.state[t.id] != statePending {
		return
	}
	b.state[t.id] = stateInProgress
	defer func() { b.state[t.id] = stateDone }()

	n := b.g.index[t.id]
	d := t.def
	if d == nil {
		d = &schema.Definition{}
	}
	for _, issue := range d.Issues {
		b.warn(WarnIgnoredKeyword, n.ID, "%s", issue)
	}

	n.Kind = Classify(d)
	n.Description = d.Description
	n.Nullable = d.Nullable
	n.Enum = d.Enum

	switch n.Kind {
	case KindReference:
		n.TargetRef = b.resolveRef(n.ID, d.Ref)

	case KindAnyOf:
		n.Combinator = d.Combinator
		for i, alt := range d.Alternatives {
			label, target := b.descriptor(n.ID, alternativeSegment(d.Combinator, i), alt)
			n.Alternatives = append(n.Alternatives, Alternative{Label: label, Target: target})
		}

	case KindArray:
		if d.Items == nil {
			n.ItemLabel = PrimitiveUnknown
			break
		}
		n.ItemLabel, n.ItemRef = b.descriptor(n.ID, "items", d.Items)

	case KindObject:
		for _, p := range d.Properties {
			label, target := b.descriptor(n.ID, p.Name, p.Schema)
			n.Properties = append(n.Properties, Property{Name: p.Name, Label: label, Target: target})
		}
		if d.AdditionalProperties != nil {
			label, target := b.descriptor(n.ID, "additionalProperties", d.AdditionalProperties)
			n.AdditionalProperties = &Property{Name: "additionalProperties", Label: label, Target: target}
		}

	default:
		n.Format = d.Format
		switch {
		case d.Malformed != "":
			n.PrimitiveType = PrimitiveUnknown
			b.warn(WarnMalformedEntry, n.ID, "%s", d.Malformed)
		case d.Type == "":
			n.PrimitiveType = PrimitiveUnknown
			b.warn(WarnUnknownType, n.ID, "no type information")
		default:
			n.PrimitiveType = d.Type
		}
	}
}

// descriptor returns the label and target node for a definition used in
// place by owner (a property, the array items or an alternative). Inline
// primitives have no target. Inline structured definitions are queued as
// synthetic nodes named owner.segment, and their label ends with that name
// in parentheses.
func (b *builder) descriptor(owner, segment string, d *schema.Definition) (label, target string) {
	label = Label(d)
	if d == nil {
		return label, ""
	}
	if d.Malformed != "" {
		b.warn(WarnMalformedEntry, owner, "%s: %s", segment, d.Malformed)
		return label, ""
	}
	if needsNode(d) {
		id := b.synthesize(owner+"."+segment, d)
		return label + " (" + id + ")", id
	}
	for _, issue := range d.Issues {
		b.warn(WarnIgnoredKeyword, owner, "%s: %s", segment, issue)
	}
	switch {
	case d.Ref != "":
		target = b.resolveRef(owner, d.Ref)
	case Classify(d) == KindArray && d.Items != nil:
		// An array used in place points at whatever its items point at.
		var items string
		items, target = b.descriptor(owner, segment+".items", d.Items)
		label = "array of " + items
	}
	return label, target
}

// resolveRef maps a reference indicator to a node id. Declared components
// resolve by name without being classified. Unknown names get one memoized
// placeholder node and a warning per referring site.
func (b *builder) resolveRef(from, ref string) string {
	name := schema.RefName(ref)
	if name == "" {
		name = ref
	}
	if b.m.Has(name) {
		return name
	}
	b.warn(WarnUnresolvedReference, from, "reference %q names no declared component", ref)
	if id, ok := b.unresolved[name]; ok {
		return id
	}

	id := b.uniqueID(name)
	b.g.addNode(&Node{
		ID:            id,
		Kind:          KindSimple,
		PrimitiveType: PrimitiveUnresolved,
		Unresolved:    true,
	})
	b.state[id] = stateDone
	b.unresolved[name] = id
	return id
}

func (b *builder) synthesize(base string, d *schema.Definition) string {
	id := b.uniqueID(base)
	b.g.addNode(&Node{ID: id, Synthetic: true})
	b.enqueue(id, d)
	return id
}

// uniqueID returns base, or base~N for the smallest N >= 2 that is neither
// a node nor a declared component.
func (b *builder) uniqueID(base string) string {
	taken := func(id string) bool { return b.g.Has(id) || b.m.Has(id) }
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		id := base + "~" + strconv.Itoa(i)
		if !taken(id) {
			return id
		}
	}
}

func (b *builder) deriveEdges() {
	for _, n := range b.g.nodes {
		switch n.Kind {
		case KindArray:
			if n.ItemRef != "" {
				b.g.addEdge(Edge{From: n.ID, To: n.ItemRef, Kind: EdgeArrayOf, Label: "items"})
			}
		case KindObject:
			for _, p := range n.Properties {
				if p.Target != "" {
					b.g.addEdge(Edge{From: n.ID, To: p.Target, Kind: EdgeContains, Label: p.Name})
				}
			}
			if ap := n.AdditionalProperties; ap != nil && ap.Target != "" {
				b.g.addEdge(Edge{From: n.ID, To: ap.Target, Kind: EdgeContains, Label: ap.Name})
			}
		case KindReference:
			b.g.addEdge(Edge{From: n.ID, To: n.TargetRef, Kind: EdgeReferences, Label: "references"})
		case KindAnyOf:
			for i, a := range n.Alternatives {
				if a.Target != "" {
					b.g.addEdge(Edge{From: n.ID, To: a.Target, Kind: EdgeAlternativeOf, Label: alternativeSegment(n.Combinator, i)})
				}
			}
		}
	}
}

func alternativeSegment(combinator string, i int) string {
	if combinator == "" {
		combinator = "anyOf"
	}
	return fmt.Sprintf("%s[%d]", combinator, i)
}
