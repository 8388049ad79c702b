package svg

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
	"github.com/matzehuels/schemagraph/pkg/graph"
)

// Theme is a color scheme.
type Theme struct {
	Name       string
	Background string
	Fill       string
	Stroke     string
	Text       string
	Muted      string
	// Header colors the title band per node kind.
	Header map[graph.Kind]string
	// Edge colors lines and arrows per edge kind.
	Edge map[graph.EdgeKind]string
	// DegradedFill and DegradedStroke mark unknown and unresolved nodes.
	DegradedFill   string
	DegradedStroke string
}

var themes = map[string]Theme{
	"light": {
		Name:       "light",
		Background: "#ffffff",
		Fill:       "#ffffff",
		Stroke:     "#4a5568",
		Text:       "#1a202c",
		Muted:      "#718096",
		Header: map[graph.Kind]string{
			graph.KindSimple:    "#e2e8f0",
			graph.KindArray:     "#c6f6d5",
			graph.KindObject:    "#bee3f8",
			graph.KindReference: "#fefcbf",
			graph.KindAnyOf:     "#e9d8fd",
		},
		Edge: map[graph.EdgeKind]string{
			graph.EdgeContains:      "#2b6cb0",
			graph.EdgeArrayOf:       "#2f855a",
			graph.EdgeReferences:    "#b7791f",
			graph.EdgeAlternativeOf: "#6b46c1",
		},
		DegradedFill:   "#fff5f5",
		DegradedStroke: "#c53030",
	},
	"dark": {
		Name:       "dark",
		Background: "#1a202c",
		Fill:       "#2d3748",
		Stroke:     "#a0aec0",
		Text:       "#f7fafc",
		Muted:      "#a0aec0",
		Header: map[graph.Kind]string{
			graph.KindSimple:    "#4a5568",
			graph.KindArray:     "#276749",
			graph.KindObject:    "#2c5282",
			graph.KindReference: "#744210",
			graph.KindAnyOf:     "#553c9a",
		},
		Edge: map[graph.EdgeKind]string{
			graph.EdgeContains:      "#63b3ed",
			graph.EdgeArrayOf:       "#68d391",
			graph.EdgeReferences:    "#f6e05e",
			graph.EdgeAlternativeOf: "#b794f4",
		},
		DegradedFill:   "#742a2a",
		DegradedStroke: "#fc8181",
	},
}

// ThemeNames returns the built-in theme names, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupTheme returns the built-in theme with the given name.
func LookupTheme(name string) (Theme, error) {
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		return Theme{}, apperrors.New(apperrors.ErrCodeInvalidStyle, "unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}
	return t, nil
}

// css returns the style sheet embedded in the document. Kinds and edge
// kinds are emitted in enum order so the output is stable.
func (t Theme) css(fontFamily string, fontSize float64) string {
	var sb strings.Builder
	w := func(format string, args ...any) { fmt.Fprintf(&sb, format, args...) }

	w("\n    svg { font-family: %s; font-size: %spx; }", fontFamily, num(fontSize))
	w("\n    .background { fill: %s; }", t.Background)
	w("\n    .box { fill: %s; stroke: %s; stroke-width: 1.2; }", t.Fill, t.Stroke)
	w("\n    .title { fill: %s; font-weight: bold; }", t.Text)
	w("\n    .row-name { fill: %s; }", t.Text)
	w("\n    .row-type, .summary { fill: %s; }", t.Muted)
	w("\n    .separator { stroke: %s; stroke-width: 0.5; opacity: 0.5; }", t.Stroke)
	for k := graph.KindSimple; k <= graph.KindAnyOf; k++ {
		w("\n    .%s .header { fill: %s; }", k, t.Header[k])
	}
	w("\n    .degraded .box, .degraded .header { fill: %s; stroke: %s; stroke-dasharray: 4 2; }", t.DegradedFill, t.DegradedStroke)
	w("\n    .degraded .summary { fill: %s; font-style: italic; }", t.DegradedStroke)
	w("\n    .edge { fill: none; stroke-width: 1.4; }")
	for k := graph.EdgeContains; k <= graph.EdgeAlternativeOf; k++ {
		w("\n    .edge.%s { stroke: %s; }", k, t.Edge[k])
		w("\n    .arrow-%s { fill: %s; }", k, t.Edge[k])
	}
	w("\n    .edge.References { stroke-dasharray: 6 3; }")
	w("\n    .edge.AlternativeOf { stroke-dasharray: 2 3; }")
	w("\n    g[id^=\"node-\"]:hover .box { stroke-width: 2.4; }")
	w("\n    .edge:hover { stroke-width: 2.8; }")
	w("\n  ")
	return sb.String()
}
