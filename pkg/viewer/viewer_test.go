package viewer

import (
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" id="main-svg"><g id="node-A" class="Simple"></g></svg>`)
	out, err := Wrap(svg, "Pets & Owners")
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		`<div id="svg-container">`,
		string(svg),
		`<title>Pets &amp; Owners</title>`,
		`document.getElementById("main-svg")`,
		`const reloadURL = "";`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestRenderPage(t *testing.T) {
	out, err := Render([]byte(`<svg id="g"></svg>`), Page{RootID: "g", Stats: "1 nodes", ReloadURL: "/version"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	for _, want := range []string{`<title>schemagraph</title>`, `document.getElementById("g")`, `1 nodes`, `const reloadURL = "`, `version"`} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in:\n%s", want, html)
		}
	}
}
