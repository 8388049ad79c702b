// Package svg draws a laid-out schema graph as an SVG document.
//
// [Render] converts a [graph.Graph] and its [layout.Plan] into a [Drawing]:
// a tree of drawing primitives ([Group], [Rect], [Text], [Line], [Path]) in
// canvas coordinates. [Drawing.SVG] serializes it. Rendering is a pure
// function of its inputs, so equal inputs give byte-identical documents.
//
// The document structure is stable so the HTML viewer and tests can address
// it: the root element carries [Options.RootID], every node is a
// <g id="node-ID" class="Kind"> and every edge a <path class="edge EdgeKind">
// ending in an arrow marker. Degraded nodes (unknown type or unresolved
// reference) also carry the class "degraded" and a data-status attribute.
//
// Colors come from a [Theme]; "light" and "dark" are built in.
package svg
