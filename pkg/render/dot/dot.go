// Package dot exports a schema graph as Graphviz DOT and renders it with the
// Graphviz engine.
//
// Objects become HTML-like table labels with one port per property, so
// containment edges start at the property that produced them. Edge styles
// follow the SVG renderer: references dashed, alternatives dotted.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/schemagraph/pkg/graph"
)

// Options configures DOT output.
type Options struct {
	// RankDir is the Graphviz rankdir; "LR" matches the built-in layout.
	RankDir string
}

var headerColor = map[graph.Kind]string{
	graph.KindSimple:    "#e2e8f0",
	graph.KindArray:     "#c6f6d5",
	graph.KindObject:    "#bee3f8",
	graph.KindReference: "#fefcbf",
	graph.KindAnyOf:     "#e9d8fd",
}

var edgeStyle = map[graph.EdgeKind]string{
	graph.EdgeContains:      "solid",
	graph.EdgeArrayOf:       "solid",
	graph.EdgeReferences:    "dashed",
	graph.EdgeAlternativeOf: "dotted",
}

// ToDOT converts a graph to Graphviz DOT. Nodes and edges are written in
// graph order, so the output is deterministic.
func ToDOT(g *graph.Graph, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph schema {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=plain, fontname=\"monospace\", fontsize=11];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [label=<%s>];\n", n.ID, htmlLabel(n))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		from := strconv.Quote(e.From)
		if port := sourcePort(g, e); port != "" {
			from += ":" + port + ":e"
		}
		attrs := []string{
			"style=" + edgeStyle[e.Kind],
			fmt.Sprintf("tooltip=%q", e.Kind.String()+" "+e.Label),
		}
		fmt.Fprintf(&buf, "  %s -> %q [%s];\n", from, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func htmlLabel(n *graph.Node) string {
	var sb strings.Builder
	border := 1
	if n.Degraded() {
		border = 2
	}
	fmt.Fprintf(&sb, `<table border="%d" cellborder="0" cellspacing="0" cellpadding="4">`, border)
	fmt.Fprintf(&sb, `<tr><td bgcolor="%s"><b>%s</b></td></tr>`, headerColor[n.Kind], escape(n.ID))

	switch n.Kind {
	case graph.KindObject:
		for i, p := range n.Properties {
			fmt.Fprintf(&sb, `<tr><td port="p%d" align="left">%s: %s</td></tr>`, i, escape(p.Name), escape(p.Label))
		}
		if ap := n.AdditionalProperties; ap != nil {
			fmt.Fprintf(&sb, `<tr><td port="ap" align="left">[key]: %s</td></tr>`, escape(ap.Label))
		}
	default:
		fmt.Fprintf(&sb, `<tr><td><i>%s</i></td></tr>`, escape(n.Summary()))
	}
	sb.WriteString("</table>")
	return sb.String()
}

// sourcePort returns the table port a containment edge leaves from.
func sourcePort(g *graph.Graph, e graph.Edge) string {
	if e.Kind != graph.EdgeContains {
		return ""
	}
	n, ok := g.Node(e.From)
	if !ok {
		return ""
	}
	for i, p := range n.Properties {
		if p.Name == e.Label && p.Target == e.To {
			return "p" + strconv.Itoa(i)
		}
	}
	if ap := n.AdditionalProperties; ap != nil && e.Label == ap.Name {
		return "ap"
	}
	return ""
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return htmlEscaper.Replace(s) }

// RenderSVG renders DOT to SVG using the Graphviz engine. The root element
// gets rootID so the viewer can embed it like the built-in drawing.
func RenderSVG(ctx context.Context, dot, rootID string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeRoot(buf.Bytes(), rootID), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeRoot replaces Graphviz's root element (point-based width and
// height, offset viewBox) with a plain one sized to the viewBox.
func normalizeRoot(svg []byte, rootID string) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" id="%s" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		escape(rootID), w, h, w, h)
	return svgTagRe.ReplaceAllLiteral(svg, []byte(root))
}
