package svg

import (
	"fmt"
	"strings"

	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
	"github.com/matzehuels/schemagraph/pkg/graph"
	"github.com/matzehuels/schemagraph/pkg/layout"
)

// DefaultRootID is the id of the root <svg> element the viewer looks for.
const DefaultRootID = "main-svg"

// Options controls rendering.
type Options struct {
	// RootID is the id attribute of the root element.
	RootID string
	// Theme names a built-in theme.
	Theme string
	// Margin is the space around the bounding box of all nodes and edges.
	Margin     float64
	FontFamily string
	// FontSize and Padding must match the layout options for text to fit
	// its boxes.
	FontSize float64
	Padding  float64
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		RootID:     DefaultRootID,
		Theme:      "light",
		Margin:     20,
		FontFamily: "ui-monospace, SFMono-Regular, Menlo, Consolas, monospace",
		FontSize:   layout.DefaultOptions().FontSize,
		Padding:    layout.DefaultOptions().PaddingX,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RootID == "" {
		o.RootID = d.RootID
	}
	if o.Theme == "" {
		o.Theme = d.Theme
	}
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	if o.FontFamily == "" {
		o.FontFamily = d.FontFamily
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.Padding <= 0 {
		o.Padding = d.Padding
	}
	return o
}

// Render converts a graph and its plan into a drawing. The canvas is the
// plan's bounding box grown by the margin, with its origin at the top left.
func Render(g *graph.Graph, p *layout.Plan, opts Options) (*Drawing, error) {
	if g == nil || p == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "render needs both a graph and a plan")
	}
	o := opts.withDefaults()
	theme, err := LookupTheme(o.Theme)
	if err != nil {
		return nil, err
	}
	if len(p.Nodes) != g.NodeCount() || len(p.Routes) != g.EdgeCount() {
		return nil, apperrors.New(apperrors.ErrCodeInternal,
			"plan has %d nodes and %d routes, graph has %d nodes and %d edges",
			len(p.Nodes), len(p.Routes), g.NodeCount(), g.EdgeCount())
	}

	r := &renderer{
		dx:       o.Margin - p.Bounds.X,
		dy:       o.Margin - p.Bounds.Y,
		fontSize: o.FontSize,
		padding:  o.Padding,
	}
	d := &Drawing{
		RootID:     o.RootID,
		Width:      p.Bounds.Width + 2*o.Margin,
		Height:     p.Bounds.Height + 2*o.Margin,
		Theme:      theme,
		FontFamily: o.FontFamily,
		FontSize:   o.FontSize,
		Nodes:      make([]Group, 0, len(p.Nodes)),
		Edges:      make([]Path, 0, len(p.Routes)),
	}

	for _, b := range p.Nodes {
		n, ok := g.Node(b.ID)
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeInternal, "plan node %q is not in the graph", b.ID)
		}
		d.Nodes = append(d.Nodes, r.node(n, b))
	}
	for _, route := range p.Routes {
		d.Edges = append(d.Edges, r.edge(route))
	}
	return d, nil
}

type renderer struct {
	dx, dy   float64
	fontSize float64
	padding  float64
}

func (r *renderer) pt(x, y float64) (float64, float64) { return x + r.dx, y + r.dy }

// baseline returns the text baseline that centers a line on y.
func (r *renderer) baseline(y float64) float64 { return y + r.fontSize*0.35 }

func (r *renderer) node(n *graph.Node, b layout.NodeBox) Group {
	x, y := r.pt(b.X, b.Y)
	grp := Group{
		ID:    "node-" + n.ID,
		Class: n.Kind.String(),
		Title: tooltip(n),
		Attrs: []Attr{{Name: "data-kind", Value: n.Kind.String()}},
	}
	if n.Degraded() {
		grp.Class += " degraded"
		grp.Attrs = append(grp.Attrs, Attr{Name: "data-status", Value: n.PrimitiveType})
	}
	if n.Synthetic {
		grp.Attrs = append(grp.Attrs, Attr{Name: "data-synthetic", Value: "true"})
	}

	grp.Children = append(grp.Children,
		Rect{Class: "box", X: x, Y: y, Width: b.Width, Height: b.Height, Radius: 4},
		Rect{Class: "header", X: x, Y: y, Width: b.Width, Height: b.HeaderHeight, Radius: 4},
		Text{Class: "title", X: x + b.Width/2, Y: r.baseline(y + b.HeaderHeight/2), Anchor: "middle", Content: b.Title},
	)

	pad := r.padding
	for i, row := range b.Rows {
		_, ry := r.pt(0, row.CenterY())
		if n.Kind == graph.KindObject {
			if i > 0 {
				_, sy := r.pt(0, row.Y)
				grp.Children = append(grp.Children, Line{Class: "separator", X1: x, Y1: sy, X2: x + b.Width, Y2: sy})
			}
			grp.Children = append(grp.Children, Group{
				Class: "row",
				Attrs: []Attr{{Name: "data-property", Value: row.Name}},
				Children: []Element{
					Text{Class: "row-name", X: x + pad, Y: r.baseline(ry), Content: row.Name + ":"},
					Text{Class: "row-type", X: x + b.Width - pad, Y: r.baseline(ry), Anchor: "end", Content: row.Label},
				},
			})
			continue
		}
		grp.Children = append(grp.Children,
			Text{Class: "summary", X: x + b.Width/2, Y: r.baseline(ry), Anchor: "middle", Content: row.Text()})
	}
	return grp
}

func (r *renderer) edge(route layout.Route) Path {
	e := route.Edge
	pts := make([]Point, len(route.Points))
	for i, p := range route.Points {
		x, y := r.pt(p.X, p.Y)
		pts[i] = Point{X: x, Y: y}
	}
	attrs := []Attr{
		{Name: "data-from", Value: e.From},
		{Name: "data-to", Value: e.To},
	}
	if e.Label != "" {
		attrs = append(attrs, Attr{Name: "data-label", Value: e.Label})
	}
	if route.Back {
		attrs = append(attrs, Attr{Name: "data-back", Value: "true"})
	}
	title := fmt.Sprintf("%s → %s (%s)", e.From, e.To, e.Kind)
	if e.Label != "" {
		title = fmt.Sprintf("%s.%s → %s (%s)", e.From, e.Label, e.To, e.Kind)
	}
	return Path{
		Points: pts,
		Class:  "edge " + e.Kind.String(),
		Marker: markerID(e.Kind),
		Title:  title,
		Attrs:  attrs,
	}
}

// tooltip collects what does not fit in the box: the full id, the
// description and the complete enum.
func tooltip(n *graph.Node) string {
	lines := []string{n.ID}
	if n.Synthetic {
		lines[0] += " (inline)"
	}
	if n.Description != "" {
		lines = append(lines, n.Description)
	}
	if len(n.Enum) > 0 {
		lines = append(lines, "enum: "+strings.Join(n.Enum, ", "))
	}
	if n.Nullable {
		lines = append(lines, "nullable")
	}
	return strings.Join(lines, "\n")
}
