// Package viewer wraps a rendered SVG drawing in a self-contained HTML page
// with pan, zoom and search controls.
//
// The page embeds the drawing inline inside <div id="svg-container"> and
// addresses it through the root element id (main-svg by default) and the
// node-ID group ids the svg renderer emits.
package viewer

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed viewer.html
var pageSource string

var page = template.Must(template.New("viewer").Parse(pageSource))

// Page describes one viewer document.
type Page struct {
	Title string
	// RootID is the id of the embedded <svg> element.
	RootID string
	// Stats is shown in the toolbar, e.g. "12 nodes, 15 edges".
	Stats string
	// ReloadURL, when set, is polled by the page; a changed response body
	// reloads it. The HTTP server uses this for watch mode.
	ReloadURL string
	// ReloadInterval is the polling period; zero means one second.
	ReloadInterval time.Duration
}

// Wrap embeds svg in the viewer page using the default root id.
func Wrap(svg []byte, title string) ([]byte, error) {
	return Render(svg, Page{Title: title})
}

// Render embeds svg in the viewer page described by p.
func Render(svg []byte, p Page) ([]byte, error) {
	if p.RootID == "" {
		p.RootID = "main-svg"
	}
	if p.Title == "" {
		p.Title = "schemagraph"
	}
	if p.ReloadInterval <= 0 {
		p.ReloadInterval = time.Second
	}
	data := struct {
		Page
		SVG          template.HTML
		ReloadMillis int64
	}{
		Page:         p,
		ReloadMillis: p.ReloadInterval.Milliseconds(),
		// The drawing comes from our own renderer, which escapes every
		// schema-provided string.
		SVG: template.HTML(svg),
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render viewer: %w", err)
	}
	return buf.Bytes(), nil
}
