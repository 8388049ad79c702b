package graph

import (
	"slices"

	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
)

// Graph is the built component graph. It is immutable once Build returns:
// accessors return copies or read-only views.
type Graph struct {
	nodes    []*Node
	index    map[string]*Node
	edges    []Edge
	out      map[string][]int
	in       map[string][]int
	warnings []Warning
}

func newGraph() *Graph {
	return &Graph{
		index: make(map[string]*Node),
		out:   make(map[string][]int),
		in:    make(map[string][]int),
	}
}

// Nodes returns all nodes in discovery order. The returned slice and the
// nodes it points to must be treated as read-only.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Has reports whether a node with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Edges returns a copy of all edges in derivation order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Outgoing returns the edges leaving id, in derivation order.
func (g *Graph) Outgoing(id string) []Edge { return g.pick(g.out[id]) }

// Incoming returns the edges entering id, in derivation order.
func (g *Graph) Incoming(id string) []Edge { return g.pick(g.in[id]) }

func (g *Graph) pick(idx []int) []Edge {
	if len(idx) == 0 {
		return nil
	}
	out := make([]Edge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}

// Warnings returns the non-fatal conditions recorded while building.
func (g *Graph) Warnings() []Warning { return slices.Clone(g.warnings) }

// KindCounts returns the number of nodes per kind.
func (g *Graph) KindCounts() map[Kind]int {
	counts := make(map[Kind]int, len(kindNames))
	for _, n := range g.nodes {
		counts[n.Kind]++
	}
	return counts
}

// Validate checks the structural invariants: node ids are unique and
// non-empty, and every edge endpoint names an existing node. A violation is
// a defect in the builder and is reported as ErrCodeInternal.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.nodes))
	for _, n := range g.nodes {
		if n.ID == "" {
			return apperrors.New(apperrors.ErrCodeInternal, "node at position %d has an empty id", n.Order)
		}
		if seen[n.ID] {
			return apperrors.New(apperrors.ErrCodeInternal, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	for _, e := range g.edges {
		if !seen[e.From] {
			return apperrors.New(apperrors.ErrCodeInternal, "edge %s -> %s: unknown source", e.From, e.To)
		}
		if !seen[e.To] {
			return apperrors.New(apperrors.ErrCodeInternal, "edge %s -> %s: unknown target", e.From, e.To)
		}
	}
	return nil
}

func (g *Graph) addNode(n *Node) {
	n.Order = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.index[n.ID] = n
}

func (g *Graph) addEdge(e Edge) {
	i := len(g.edges)
	g.edges = append(g.edges, e)
	g.out[e.From] = append(g.out[e.From], i)
	g.in[e.To] = append(g.in[e.To], i)
}
