package layout

import (
	"math"

	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
	"github.com/matzehuels/schemagraph/pkg/graph"
)

// Point is a position in plan coordinates. Y grows downwards.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Intersects reports whether r and o share interior area. Touching edges
// do not count.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

func (r Rect) union(o Rect) Rect {
	x, y := min(r.X, o.X), min(r.Y, o.Y)
	return Rect{X: x, Y: y, Width: max(r.Right(), o.Right()) - x, Height: max(r.Bottom(), o.Bottom()) - y}
}

// Row is one text line below a node's header: a property, an alternative,
// the item type or a primitive summary.
type Row struct {
	// Name is the property name; empty for summary rows.
	Name string
	// Label is the (possibly truncated) type descriptor.
	Label string
	// Target is the node this row points at, or "".
	Target string
	// Y is the top of the row; Height its extent.
	Y, Height float64
}

// Text returns the row as drawn: "name: label" or just the label.
func (r Row) Text() string {
	if r.Name == "" {
		return r.Label
	}
	return r.Name + ": " + r.Label
}

// CenterY returns the vertical middle of the row.
func (r Row) CenterY() float64 { return r.Y + r.Height/2 }

// NodeBox is the placed box of one node.
type NodeBox struct {
	Rect
	ID string
	// Title is the header text (the node id, possibly truncated).
	Title string
	Kind  graph.Kind
	// Layer is the column index, Index the position inside the column.
	Layer, Index int
	// HeaderHeight is the height of the title band at the top of the box.
	HeaderHeight float64
	Rows         []Row
}

// HeaderCenterY returns the vertical middle of the title band.
func (b NodeBox) HeaderCenterY() float64 { return b.Y + b.HeaderHeight/2 }

// Route is the path of one edge.
type Route struct {
	Edge graph.Edge
	// Points are the ordered waypoints from source to target. Consecutive
	// points differ in exactly one coordinate.
	Points []Point
	// Back marks edges that were ignored for layering (they close a cycle).
	Back bool
	// EntersRight marks routes that enter the target on its right side.
	EntersRight bool
}

// Plan is the result of Layout. Nodes follow graph order, Routes follow
// graph edge order.
type Plan struct {
	Nodes  []NodeBox
	Routes []Route
	// Layers lists node ids per column, top to bottom.
	Layers [][]string
	// Bounds encloses every node box and every waypoint.
	Bounds Rect
	// BackEdges counts edges ignored for layering.
	BackEdges int
	// Crossings counts edge crossings between adjacent columns.
	Crossings int

	index map[string]int
}

// Node returns the box for id.
func (p *Plan) Node(id string) (NodeBox, bool) {
	i, ok := p.index[id]
	if !ok {
		return NodeBox{}, false
	}
	return p.Nodes[i], true
}

// Width returns the horizontal extent of the plan.
func (p *Plan) Width() float64 { return p.Bounds.Width }

// Height returns the vertical extent of the plan.
func (p *Plan) Height() float64 { return p.Bounds.Height }

// Validate checks that no two node boxes overlap and that every route is a
// finite path of at least two points. A violation is a layout defect and is
// reported as ErrCodeInternal.
func (p *Plan) Validate() error {
	for i := range p.Nodes {
		a := p.Nodes[i]
		if a.Width <= 0 || a.Height <= 0 {
			return apperrors.New(apperrors.ErrCodeInternal, "node %q has an empty box", a.ID)
		}
		for j := i + 1; j < len(p.Nodes); j++ {
			if b := p.Nodes[j]; a.Intersects(b.Rect) {
				return apperrors.New(apperrors.ErrCodeInternal, "nodes %q and %q overlap", a.ID, b.ID)
			}
		}
	}
	for _, r := range p.Routes {
		if len(r.Points) < 2 {
			return apperrors.New(apperrors.ErrCodeInternal, "edge %s -> %s has %d waypoints", r.Edge.From, r.Edge.To, len(r.Points))
		}
		for _, pt := range r.Points {
			if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
				return apperrors.New(apperrors.ErrCodeInternal, "edge %s -> %s has a non-finite waypoint", r.Edge.From, r.Edge.To)
			}
		}
	}
	return nil
}
