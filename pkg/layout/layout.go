package layout

import (
	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
	"github.com/matzehuels/schemagraph/pkg/graph"
)

// routeClass groups edges by how they travel between columns.
type routeClass int

const (
	// forward to the next column: one lane in the gap between them
	classAdjacent routeClass = iota
	// forward across columns: lanes at both ends joined through a top channel
	classLong
	// into the same column, including self loops: one lane right of it
	classSame
	// into an earlier column: lanes at both ends joined through a bottom channel
	classBack
)

type lanePlan struct {
	class        routeClass
	from, to     int // source and target layer
	laneA, laneB int
	channel      int
}

// Layout places every node of g and routes every edge. It fails only for a
// nil graph or when the resulting plan does not pass [Plan.Validate].
func Layout(g *graph.Graph, opts Options) (*Plan, error) {
	if g == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "graph is nil")
	}
	o := opts.WithDefaults()

	order := stableOrder(g)
	edges := g.Edges()
	back := findBackEdges(order, edges)
	layerOf := assignLayers(order, edges, back)

	numLayers := 0
	for _, n := range order {
		numLayers = max(numLayers, layerOf[n.ID]+1)
	}

	p := &Plan{
		Layers: make([][]string, numLayers),
		index:  make(map[string]int, len(order)),
	}
	pos := make(map[string]int, len(order))
	boxes := make(map[string]*NodeBox, len(order))
	ordered := make([]*NodeBox, 0, len(order))
	for _, n := range order {
		l := layerOf[n.ID]
		b := measure(n, o)
		b.Layer, b.Index = l, len(p.Layers[l])
		pos[n.ID] = b.Index
		p.Layers[l] = append(p.Layers[l], n.ID)
		boxes[n.ID] = &b
		ordered = append(ordered, &b)
	}

	// Allocate lanes and channels in edge order.
	lanes := make([]int, numLayers)
	alloc := func(gap int) int {
		lanes[gap]++
		return lanes[gap] - 1
	}
	var top, bottom int
	plans := make([]lanePlan, len(edges))
	for i, e := range edges {
		a, b := layerOf[e.From], layerOf[e.To]
		lp := lanePlan{from: a, to: b, laneA: alloc(a)}
		switch {
		case b == a+1:
			lp.class = classAdjacent
		case b > a+1:
			lp.class, lp.laneB, lp.channel = classLong, alloc(b-1), top
			top++
		case b == a:
			lp.class = classSame
		default:
			lp.class, lp.laneB, lp.channel = classBack, alloc(b), bottom
			bottom++
		}
		plans[i] = lp
	}

	// Columns left to right, each gap widened by its lanes.
	colX := make([]float64, numLayers)
	colW := make([]float64, numLayers)
	for _, b := range ordered {
		colW[b.Layer] = max(colW[b.Layer], b.Width)
	}
	for l := 1; l < numLayers; l++ {
		colX[l] = colX[l-1] + colW[l-1] + o.LayerGap + float64(lanes[l-1])*o.LaneGap
	}
	laneX := func(gap, lane int) float64 {
		return colX[gap] + colW[gap] + o.LayerGap/2 + float64(lane)*o.LaneGap
	}

	// Stack nodes inside each column.
	colY := make([]float64, numLayers)
	var bottomY float64
	for _, b := range ordered {
		b.X, b.Y = colX[b.Layer], colY[b.Layer]
		for i := range b.Rows {
			b.Rows[i].Y += b.Y
		}
		colY[b.Layer] += b.Height + o.NodeGap
		bottomY = max(bottomY, b.Bottom())
	}

	// Outgoing edges leave at the rows that produced them, in order.
	anchors := make(map[string][]float64, len(ordered))
	for _, b := range ordered {
		for _, r := range b.Rows {
			if r.Target != "" {
				anchors[b.ID] = append(anchors[b.ID], r.CenterY())
			}
		}
	}
	used := make(map[string]int, len(ordered))

	p.Routes = make([]Route, len(edges))
	for i, e := range edges {
		src, tgt := boxes[e.From], boxes[e.To]
		ys := src.HeaderCenterY()
		if k := used[e.From]; k < len(anchors[e.From]) {
			ys = anchors[e.From][k]
		}
		used[e.From]++

		lp := plans[i]
		xs, yt := src.Right(), tgt.HeaderCenterY()
		x1 := laneX(lp.from, lp.laneA)
		r := Route{Edge: e, Back: back[i]}
		switch lp.class {
		case classAdjacent:
			r.Points = []Point{{xs, ys}, {x1, ys}, {x1, yt}, {tgt.X, yt}}
		case classLong:
			yc := -o.ChannelGap * float64(lp.channel+1)
			x2 := laneX(lp.to-1, lp.laneB)
			r.Points = []Point{{xs, ys}, {x1, ys}, {x1, yc}, {x2, yc}, {x2, yt}, {tgt.X, yt}}
		case classSame:
			r.EntersRight = true
			r.Points = []Point{{xs, ys}, {x1, ys}, {x1, yt}, {tgt.Right(), yt}}
		case classBack:
			r.EntersRight = true
			yc := bottomY + o.ChannelGap*float64(lp.channel+1)
			x2 := laneX(lp.to, lp.laneB)
			r.Points = []Point{{xs, ys}, {x1, ys}, {x1, yc}, {x2, yc}, {x2, yt}, {tgt.Right(), yt}}
		}
		r.Points = simplify(r.Points)
		p.Routes[i] = r
	}

	p.Nodes = make([]NodeBox, 0, len(ordered))
	for i, b := range ordered {
		p.Nodes = append(p.Nodes, *b)
		p.index[b.ID] = i
		if i == 0 {
			p.Bounds = b.Rect
		} else {
			p.Bounds = p.Bounds.union(b.Rect)
		}
	}
	for _, r := range p.Routes {
		for _, pt := range r.Points {
			p.Bounds = p.Bounds.union(Rect{X: pt.X, Y: pt.Y})
		}
	}
	p.BackEdges = len(back)
	p.Crossings = countCrossings(p.Layers, pos, layerOf, edges, back)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// simplify drops repeated points and points in the middle of a straight
// run that keeps its direction.
func simplify(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, pt := range pts {
		n := len(out)
		if n > 0 && out[n-1] == pt {
			continue
		}
		if n >= 2 && continues(out[n-2], out[n-1], pt) {
			out[n-1] = pt
			continue
		}
		out = append(out, pt)
	}
	return out
}

func continues(a, b, c Point) bool {
	switch {
	case a.X == b.X && b.X == c.X:
		return (b.Y-a.Y)*(c.Y-b.Y) > 0
	case a.Y == b.Y && b.Y == c.Y:
		return (b.X-a.X)*(c.X-b.X) > 0
	}
	return false
}
