package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/schemagraph/pkg/graph"
)

// Element is a drawing primitive.
type Element interface {
	write(buf *bytes.Buffer, indent string)
}

// Attr is an extra attribute on a primitive.
type Attr struct {
	Name, Value string
}

// Rect is a rectangle.
type Rect struct {
	X, Y, Width, Height float64
	Radius              float64
	Class               string
}

// Text is a single line of text. Y is the baseline.
type Text struct {
	X, Y    float64
	Class   string
	Anchor  string
	Content string
}

// Line is a straight segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Class          string
}

// Path is an open polyline with an optional arrow marker at its end.
type Path struct {
	Points []Point
	Class  string
	Marker string
	Title  string
	Attrs  []Attr
}

// Point is a canvas position.
type Point struct {
	X, Y float64
}

// Group is a <g> element.
type Group struct {
	ID       string
	Class    string
	Title    string
	Attrs    []Attr
	Children []Element
}

// Drawing is a complete rendered graph in canvas coordinates.
type Drawing struct {
	RootID     string
	Width      float64
	Height     float64
	Theme      Theme
	FontFamily string
	FontSize   float64
	// Nodes holds one group per node, in graph order.
	Nodes []Group
	// Edges holds one path per edge, in graph edge order.
	Edges []Path
}

// SVG serializes the drawing.
func (d *Drawing) SVG() []byte {
	var buf bytes.Buffer
	d.write(&buf)
	return buf.Bytes()
}

// WriteTo writes the serialized drawing to w.
func (d *Drawing) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	d.write(&buf)
	return buf.WriteTo(w)
}

func (d *Drawing) write(buf *bytes.Buffer) {
	w, h := num(d.Width), num(d.Height)
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" id="%s" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		EscapeXML(d.RootID), w, h, w, h)

	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, "  <style>%s</style>\n", d.Theme.css(d.FontFamily, d.FontSize))
	for k := graph.EdgeContains; k <= graph.EdgeAlternativeOf; k++ {
		fmt.Fprintf(buf, `    <marker id="%s" class="arrow-%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse">`+
			`<path d="M 0 0 L 10 5 L 0 10 z"/></marker>`+"\n", markerID(k), k)
	}
	buf.WriteString("  </defs>\n")
	fmt.Fprintf(buf, `  <rect class="background" x="0" y="0" width="%s" height="%s"/>`+"\n", w, h)

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range d.Nodes {
		n.write(buf, "    ")
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="edges">` + "\n")
	for _, e := range d.Edges {
		e.write(buf, "    ")
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
}

func markerID(k graph.EdgeKind) string { return "arrow-" + strings.ToLower(k.String()) }

func (g Group) write(buf *bytes.Buffer, indent string) {
	buf.WriteString(indent + "<g")
	if g.ID != "" {
		fmt.Fprintf(buf, ` id="%s"`, EscapeXML(g.ID))
	}
	if g.Class != "" {
		fmt.Fprintf(buf, ` class="%s"`, EscapeXML(g.Class))
	}
	writeAttrs(buf, g.Attrs)
	buf.WriteString(">\n")
	if g.Title != "" {
		fmt.Fprintf(buf, "%s  <title>%s</title>\n", indent, EscapeXML(g.Title))
	}
	for _, c := range g.Children {
		c.write(buf, indent+"  ")
	}
	buf.WriteString(indent + "</g>\n")
}

func (r Rect) write(buf *bytes.Buffer, indent string) {
	fmt.Fprintf(buf, `%s<rect class="%s" x="%s" y="%s" width="%s" height="%s"`,
		indent, EscapeXML(r.Class), num(r.X), num(r.Y), num(r.Width), num(r.Height))
	if r.Radius > 0 {
		fmt.Fprintf(buf, ` rx="%s"`, num(r.Radius))
	}
	buf.WriteString("/>\n")
}

func (t Text) write(buf *bytes.Buffer, indent string) {
	fmt.Fprintf(buf, `%s<text class="%s" x="%s" y="%s"`, indent, EscapeXML(t.Class), num(t.X), num(t.Y))
	if t.Anchor != "" {
		fmt.Fprintf(buf, ` text-anchor="%s"`, t.Anchor)
	}
	fmt.Fprintf(buf, ">%s</text>\n", EscapeXML(t.Content))
}

func (l Line) write(buf *bytes.Buffer, indent string) {
	fmt.Fprintf(buf, `%s<line class="%s" x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n",
		indent, EscapeXML(l.Class), num(l.X1), num(l.Y1), num(l.X2), num(l.Y2))
}

func (p Path) write(buf *bytes.Buffer, indent string) {
	fmt.Fprintf(buf, `%s<path class="%s" d="%s"`, indent, EscapeXML(p.Class), p.D())
	if p.Marker != "" {
		fmt.Fprintf(buf, ` marker-end="url(#%s)"`, p.Marker)
	}
	writeAttrs(buf, p.Attrs)
	if p.Title == "" {
		buf.WriteString("/>\n")
		return
	}
	fmt.Fprintf(buf, "><title>%s</title></path>\n", EscapeXML(p.Title))
}

// D returns the path data: a move to the first point and a line to each
// following one.
func (p Path) D() string {
	var sb strings.Builder
	for i, pt := range p.Points {
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(num(pt.X))
		sb.WriteByte(' ')
		sb.WriteString(num(pt.Y))
	}
	return sb.String()
}

func writeAttrs(buf *bytes.Buffer, attrs []Attr) {
	for _, a := range attrs {
		fmt.Fprintf(buf, ` %s="%s"`, a.Name, EscapeXML(a.Value))
	}
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // normalize -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EscapeXML escapes s for use in XML text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
