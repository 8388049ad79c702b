package layout

import (
	"strings"

	"github.com/matzehuels/schemagraph/pkg/graph"
)

// maxInlineEnum is the largest enum drawn inside a node. Longer enums only
// appear in the tooltip.
const maxInlineEnum = 5

// rowSpec is a row before placement.
type rowSpec struct {
	name, label, target string
}

// contentRows lists the rows drawn below the header of n. Rows that point
// at another node appear in the same order as the node's outgoing edges.
func contentRows(n *graph.Node) []rowSpec {
	var rows []rowSpec
	switch n.Kind {
	case graph.KindObject:
		for _, p := range n.Properties {
			rows = append(rows, rowSpec{name: p.Name, label: p.Label, target: p.Target})
		}
		if ap := n.AdditionalProperties; ap != nil {
			rows = append(rows, rowSpec{name: "[key]", label: ap.Label, target: ap.Target})
		}
	case graph.KindArray:
		rows = append(rows, rowSpec{label: n.Summary(), target: n.ItemRef})
	case graph.KindReference:
		rows = append(rows, rowSpec{label: "→ " + n.TargetRef, target: n.TargetRef})
	case graph.KindAnyOf:
		combinator := n.Combinator
		if combinator == "" {
			combinator = "anyOf"
		}
		rows = append(rows, rowSpec{label: combinator})
		for _, a := range n.Alternatives {
			rows = append(rows, rowSpec{label: "| " + a.Label, target: a.Target})
		}
	default:
		label := n.PrimitiveType
		if n.Format != "" {
			label += " (" + n.Format + ")"
		}
		rows = append(rows, rowSpec{label: label})
		if len(n.Enum) > 0 && len(n.Enum) <= maxInlineEnum {
			rows = append(rows, rowSpec{label: "enum: " + strings.Join(n.Enum, ", ")})
		}
	}
	return rows
}

// measure sizes the box for n and returns it with rows positioned relative
// to the top of the box.
func measure(n *graph.Node, o Options) NodeBox {
	title := o.Truncate(n.ID)
	width := max(o.MinWidth, o.TextWidth(title)+2*o.PaddingX)

	specs := contentRows(n)
	rows := make([]Row, len(specs))
	y := o.HeaderHeight + o.PaddingY/2
	for i, s := range specs {
		r := Row{Name: s.name, Label: o.Truncate(s.label), Target: s.target, Y: y, Height: o.RowHeight}
		width = max(width, o.TextWidth(r.Text())+2*o.PaddingX)
		rows[i] = r
		y += o.RowHeight
	}

	return NodeBox{
		Rect:         Rect{Width: width, Height: y + o.PaddingY/2},
		ID:           n.ID,
		Title:        title,
		Kind:         n.Kind,
		HeaderHeight: o.HeaderHeight,
		Rows:         rows,
	}
}
