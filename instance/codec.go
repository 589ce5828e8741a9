package instance

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads an instance store document. Missing arrays decode as empty.
func Decode(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode instance graph: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return &g, nil
}

// Encode writes g as indented JSON followed by a newline.
func Encode(w io.Writer, g *Graph) error {
	out := g
	if g.Nodes == nil || g.Edges == nil {
		out = g.Clone()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode instance graph: %w", err)
	}
	return nil
}
