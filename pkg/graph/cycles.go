package graph

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// RecursiveGroups returns the sets of nodes that reach themselves through
// edges: every strongly connected component with more than one member, and
// every node with a self-loop. Members are in discovery order and groups are
// ordered by their first member.
//
// Layout and rendering do not need this; it is reported by inspect and
// logged by the pipeline so recursive schemas are visible.
func (g *Graph) RecursiveGroups() [][]string {
	dg := simple.NewDirectedGraph()
	for _, n := range g.nodes {
		dg.AddNode(simple.Node(n.Order))
	}
	selfLoop := make(map[int]bool)
	for _, e := range g.edges {
		from, to := g.index[e.From].Order, g.index[e.To].Order
		if from == to {
			// simple.DirectedGraph panics on self edges.
			selfLoop[from] = true
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(from), simple.Node(to)))
	}

	var groups [][]int
	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) == 1 && !selfLoop[int(scc[0].ID())] {
			continue
		}
		members := make([]int, len(scc))
		for i, n := range scc {
			members[i] = int(n.ID())
		}
		slices.Sort(members)
		groups = append(groups, members)
	}
	slices.SortFunc(groups, func(a, b []int) int { return a[0] - b[0] })

	out := make([][]string, len(groups))
	for i, members := range groups {
		ids := make([]string, len(members))
		for j, order := range members {
			ids[j] = g.nodes[order].ID
		}
		out[i] = ids
	}
	return out
}

// RecursiveSet returns the ids of all RecursiveGroups members.
func (g *Graph) RecursiveSet() map[string]bool {
	set := make(map[string]bool)
	for _, group := range g.RecursiveGroups() {
		for _, id := range group {
			set[id] = true
		}
	}
	return set
}
