// Package render converts finished drawings into other output formats.
//
// The drawing itself is produced by the [svg] subpackage; the [dot]
// subpackage exports the graph as Graphviz DOT and can render it with the
// Graphviz engine instead of the built-in layout.
//
// [ToPDF] and [ToPNG] convert any SVG document using the external
// rsvg-convert tool (from librsvg):
//
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
package render
