package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/schemagraph/pkg/graph"
)

// stableOrder returns the nodes sorted by discovery index, with the id as
// tie break.
func stableOrder(g *graph.Graph) []*graph.Node {
	nodes := g.Nodes()
	slices.SortStableFunc(nodes, func(a, b *graph.Node) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return nodes
}

// findBackEdges returns the indices (into g.Edges) of the edges that close a
// cycle, found by depth-first search with white/gray/black coloring.
//
// The search starts from every node without incoming edges, then from any
// node still unvisited, both in stable order, and follows edges in
// derivation order. An edge to a gray node (one on the current path) is a
// back edge; self loops always are. The walk uses an explicit stack so
// arbitrarily long chains cannot exhaust the goroutine stack.
func findBackEdges(order []*graph.Node, edges []graph.Edge) map[int]bool {
	const (
		white = iota
		gray
		black
	)

	out := make(map[string][]int, len(order))
	inDegree := make(map[string]int, len(order))
	for i, e := range edges {
		out[e.From] = append(out[e.From], i)
		inDegree[e.To]++
	}

	type frame struct {
		id   string
		next int
	}
	color := make(map[string]int, len(order))
	back := make(map[int]bool)

	visit := func(root string) {
		color[root] = gray
		stack := []frame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(out[top.id]) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			ei := out[top.id][top.next]
			top.next++
			child := edges[ei].To
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				back[ei] = true
			}
		}
	}

	for _, n := range order {
		if inDegree[n.ID] == 0 && color[n.ID] == white {
			visit(n.ID)
		}
	}
	for _, n := range order {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}
	return back
}

// assignLayers places every node one layer after its deepest parent using
// Kahn's algorithm on the edges that are not back edges. Nodes without
// forward parents are in layer 0.
func assignLayers(order []*graph.Node, edges []graph.Edge, back map[int]bool) map[string]int {
	inDegree := make(map[string]int, len(order))
	children := make(map[string][]string, len(order))
	for i, e := range edges {
		if back[i] {
			continue
		}
		children[e.From] = append(children[e.From], e.To)
		inDegree[e.To]++
	}

	layers := make(map[string]int, len(order))
	queue := make([]string, 0, len(order))
	for _, n := range order {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range children[curr] {
			if l := layers[curr] + 1; l > layers[child] {
				layers[child] = l
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return layers
}

// countCrossings counts crossings between forward edges joining adjacent
// columns. Two edges (u1,v1) and (u2,v2) cross when u1 is above u2 and v1
// below v2; the inversions are counted with a Fenwick tree.
func countCrossings(layers [][]string, pos map[string]int, layerOf map[string]int, edges []graph.Edge, back map[int]bool) int {
	type pair struct{ upper, lower int }
	byLayer := make([][]pair, len(layers))
	for i, e := range edges {
		if back[i] || layerOf[e.To] != layerOf[e.From]+1 {
			continue
		}
		l := layerOf[e.From]
		byLayer[l] = append(byLayer[l], pair{pos[e.From], pos[e.To]})
	}

	total := 0
	for l, pairs := range byLayer {
		if len(pairs) < 2 || l+1 >= len(layers) {
			continue
		}
		slices.SortFunc(pairs, func(a, b pair) int {
			if a.upper != b.upper {
				return a.upper - b.upper
			}
			return a.lower - b.lower
		})
		fenwick := make([]int, len(layers[l+1])+1)
		seen := 0
		for _, p := range pairs {
			lessOrEqual := 0
			for q := p.lower + 1; q > 0; q -= q & (-q) {
				lessOrEqual += fenwick[q]
			}
			total += seen - lessOrEqual
			seen++
			for q := p.lower + 1; q < len(fenwick); q += q & (-q) {
				fenwick[q]++
			}
		}
	}
	return total
}
