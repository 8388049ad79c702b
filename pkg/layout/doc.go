// Package layout computes positions, sizes and edge routes for a schema graph.
//
// # Overview
//
// [Layout] turns a [graph.Graph] into a [Plan]: one [NodeBox] per node with
// its text rows, and one [Route] of waypoints per edge. The plan is a pure
// function of the graph and [Options]; the same input always produces the
// same plan.
//
// # Layering
//
// Edges that close a cycle are found with an iterative depth-first search in
// stable node order and ignored for layering. The remaining acyclic graph is
// layered by longest path, so every node sits one layer after its deepest
// parent and components nothing points at land in layer 0.
//
// Layers are drawn as columns from left to right. Inside a column nodes are
// stacked top to bottom in discovery order.
//
// # Routing
//
// Every edge leaves its source on the right side, at the row that produced
// it (a property, an alternative, the item type). Forward edges enter the
// target on the left; edges to the same or an earlier column enter on the
// right. Vertical segments run in lanes between columns, and edges that skip
// columns detour through channels above or below all nodes, so no route
// crosses a node box. Each gap between columns is widened by the number of
// lanes it carries.
//
// # Sizing
//
// Text is measured with a fixed per-character width ([Options.CharWidth]
// times the font size). Labels longer than [Options.MaxLabelChars] are
// truncated with "..".
package layout
