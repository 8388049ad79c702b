package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
	"github.com/matzehuels/schemagraph/pkg/graph"
	"github.com/matzehuels/schemagraph/pkg/layout"
	"github.com/matzehuels/schemagraph/pkg/schema"
)

func renderYAML(t *testing.T, src string, opts Options) []byte {
	t.Helper()
	m, err := schema.Parse([]byte(src), schema.FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g, err := graph.Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p, err := layout.Layout(g, layout.DefaultOptions())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	d, err := Render(g, p, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := d.SVG()
	assertWellFormed(t, out)
	return out
}

func assertWellFormed(t *testing.T, doc []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("malformed SVG: %v\n%s", err, doc)
		}
	}
}

func TestRenderScenarios(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantGroups []string
		wantEdges  map[string]int
		wantRows   int
	}{
		{
			name:       "ObjectOnly",
			src:        `{"Pet": {type: object, properties: {name: {type: string}}}}`,
			wantGroups: []string{`<g id="node-Pet" class="Object"`},
			wantEdges:  map[string]int{},
			wantRows:   1,
		},
		{
			name:       "ArrayOf",
			src:        `{"Pets": {type: array, items: {$ref: "Pet"}}, "Pet": {type: object, properties: {}}}`,
			wantGroups: []string{`<g id="node-Pets" class="Array"`, `<g id="node-Pet" class="Object"`},
			wantEdges:  map[string]int{"ArrayOf": 1},
		},
		{
			name:       "MutualReference",
			src:        `{"A": {$ref: "B"}, "B": {$ref: "A"}}`,
			wantGroups: []string{`<g id="node-A" class="Reference"`, `<g id="node-B" class="Reference"`},
			wantEdges:  map[string]int{"References": 2},
		},
		{
			name:       "Union",
			src:        `{"X": {anyOf: [{type: string}, {$ref: "Y"}]}, "Y": {type: object, properties: {}}}`,
			wantGroups: []string{`<g id="node-X" class="AnyOf"`, `<g id="node-Y" class="Object"`},
			wantEdges:  map[string]int{"AlternativeOf": 1},
		},
		{
			name:       "Unresolved",
			src:        `{"Order": {type: object, properties: {customer: {$ref: Customer}}}}`,
			wantGroups: []string{`<g id="node-Order" class="Object"`, `<g id="node-Customer" class="Simple degraded"`},
			wantEdges:  map[string]int{"Contains": 1},
			wantRows:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := string(renderYAML(t, tt.src, Options{}))
			for _, want := range tt.wantGroups {
				if !strings.Contains(doc, want) {
					t.Errorf("missing %s", want)
				}
			}
			if got := strings.Count(doc, `<g id="node-`); got != len(tt.wantGroups) {
				t.Errorf("node groups = %d, want %d", got, len(tt.wantGroups))
			}
			total := 0
			for kind, want := range tt.wantEdges {
				total += want
				if got := strings.Count(doc, `<path class="edge `+kind+`"`); got != want {
					t.Errorf("%s edges = %d, want %d", kind, got, want)
				}
			}
			if got := strings.Count(doc, `<path class="edge `); got != total {
				t.Errorf("edge paths = %d, want %d", got, total)
			}
			if got := strings.Count(doc, `<g class="row"`); got != tt.wantRows {
				t.Errorf("property rows = %d, want %d", got, tt.wantRows)
			}
		})
	}
}

func TestRenderPropertyOrder(t *testing.T) {
	doc := string(renderYAML(t, `{"T": {properties: {zeta: {type: string}, alpha: {type: integer}, mid: {type: boolean}}}}`, Options{}))
	last := -1
	for _, name := range []string{"zeta", "alpha", "mid"} {
		i := strings.Index(doc, `data-property="`+name+`"`)
		if i < 0 {
			t.Fatalf("missing row %s", name)
		}
		if i < last {
			t.Errorf("row %s out of declaration order", name)
		}
		last = i
	}
	if !strings.Contains(doc, `>zeta:</text>`) || !strings.Contains(doc, `>string</text>`) {
		t.Errorf("row text missing:\n%s", doc)
	}
}

func TestRenderEdgeStyling(t *testing.T) {
	doc := string(renderYAML(t, `{"A": {$ref: B}, "B": {anyOf: [{$ref: A}]}}`, Options{}))
	for _, want := range []string{
		`marker-end="url(#arrow-references)"`,
		`marker-end="url(#arrow-alternativeof)"`,
		`.edge.References { stroke-dasharray: 6 3; }`,
		`.edge.AlternativeOf { stroke-dasharray: 2 3; }`,
		`data-back="true"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestRenderRootIDAndTheme(t *testing.T) {
	src := `{"A": {type: string}}`
	if doc := string(renderYAML(t, src, Options{})); !strings.Contains(doc, `id="main-svg"`) {
		t.Errorf("default root id missing")
	}
	doc := string(renderYAML(t, src, Options{RootID: "graph", Theme: "dark"}))
	if !strings.Contains(doc, `id="graph"`) || !strings.Contains(doc, `.background { fill: #1a202c; }`) {
		t.Errorf("custom root id or dark theme missing:\n%s", doc)
	}
}

func TestRenderUnknownTheme(t *testing.T) {
	m, _ := schema.Parse([]byte(`{"A": {"type": "string"}}`), schema.FormatJSON)
	g, _ := graph.Build(m)
	p, _ := layout.Layout(g, layout.Options{})
	if _, err := Render(g, p, Options{Theme: "neon"}); !apperrors.Is(err, apperrors.ErrCodeInvalidStyle) {
		t.Fatalf("Render error = %v, want INVALID_STYLE", err)
	}
	if _, err := Render(nil, p, Options{}); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("Render(nil) error = %v, want INVALID_INPUT", err)
	}
}

func TestRenderTooltipAndEscaping(t *testing.T) {
	doc := string(renderYAML(t, `
"A<&>": {type: string, description: "quotes \" and <tags>", enum: [a, b, c, d, e, f]}
`, Options{}))
	if !strings.Contains(doc, `id="node-A&lt;&amp;&gt;"`) {
		t.Errorf("id not escaped:\n%s", doc)
	}
	if !strings.Contains(doc, "<title>A&lt;&amp;&gt;&#xA;quotes &#34; and &lt;tags&gt;&#xA;enum: a, b, c, d, e, f</title>") {
		t.Errorf("tooltip missing:\n%s", doc)
	}
	if strings.Contains(doc, `>enum: a, b, c, d, e, f</text>`) {
		t.Errorf("long enum drawn inside the node")
	}
}

func TestRenderCanvasCoversPlan(t *testing.T) {
	m, _ := schema.Parse([]byte(`{"A": {"$ref": "B"}, "B": {"$ref": "A"}}`), schema.FormatJSON)
	g, _ := graph.Build(m)
	p, err := layout.Layout(g, layout.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	d, err := Render(g, p, Options{Margin: 15})
	if err != nil {
		t.Fatal(err)
	}
	if d.Width != p.Width()+30 || d.Height != p.Height()+30 {
		t.Errorf("canvas %vx%v, want plan %vx%v plus margins", d.Width, d.Height, p.Width(), p.Height())
	}
	for _, e := range d.Edges {
		for _, pt := range e.Points {
			const eps = 1e-9
			if pt.X < 15-eps || pt.Y < 15-eps || pt.X > d.Width-15+eps || pt.Y > d.Height-15+eps {
				t.Errorf("waypoint %v outside the margin", pt)
			}
		}
	}
}

func TestRenderInlineTargetNamed(t *testing.T) {
	doc := string(renderYAML(t, `{"Pet": {type: object, properties: {owner: {type: object, properties: {name: {type: string}}}}}}`, Options{}))
	if !strings.Contains(doc, `>object (Pet.owner)</text>`) {
		t.Errorf("owner row does not name its inline node:\n%s", doc)
	}
}

func TestRenderDeterministic(t *testing.T) {
	src := `
Pet: {type: object, properties: {id: {type: integer}, owner: {$ref: Owner}, tags: {type: array, items: {$ref: Tag}}}}
Owner: {type: object, properties: {pets: {type: array, items: {$ref: Pet}}}}
Tag: {oneOf: [{type: string}, {$ref: Missing}]}
`
	first := renderYAML(t, src, Options{})
	for i := 0; i < 5; i++ {
		if again := renderYAML(t, src, Options{}); !bytes.Equal(first, again) {
			t.Fatalf("run %d produced different bytes", i)
		}
	}
}

func TestNum(t *testing.T) {
	for in, want := range map[float64]string{0: "0", -0.001: "0", 1.5: "1.5", 2.346: "2.35", 100: "100"} {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}
