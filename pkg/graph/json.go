package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

type document struct {
	Nodes    []*Node   `json:"nodes"`
	Edges    []Edge    `json:"edges"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// MarshalJSON encodes the graph with nodes in discovery order and edges in
// derivation order, so equal graphs encode to equal bytes.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.document())
}

// WriteJSON writes the indented JSON form of the graph to w.
func (g *Graph) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.document()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// JSON returns the indented JSON form of the graph.
func (g *Graph) JSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := g.WriteJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Graph) document() document {
	edges := g.edges
	if edges == nil {
		edges = []Edge{}
	}
	nodes := g.nodes
	if nodes == nil {
		nodes = []*Node{}
	}
	return document{Nodes: nodes, Edges: edges, Warnings: g.warnings}
}
