// Package instance holds the instance store: nodes typed by ontology
// classes and edges typed by object properties.
package instance

import (
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Node is one instance of an ontology class.
type Node struct {
	ID         string         `json:"id"`
	Class      string         `json:"class"`
	Properties map[string]any `json:"properties"`
}

// Edge is one object-property assertion between two nodes.
type Edge struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the instance store document.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: []Node{}, Edges: []Edge{}}
}

// NewNodeID returns a random 32-character hex identifier.
func NewNodeID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewEdgeID returns a random 32-character hex identifier.
func NewEdgeID() string {
	return NewNodeID()
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: slices.Clone(g.Edges),
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	for i, n := range g.Nodes {
		n.Properties = maps.Clone(n.Properties)
		out.Nodes[i] = n
	}
	return out
}

// MergeStats counts what Merge added and skipped.
type MergeStats struct {
	NodesAdded   int
	NodesSkipped int
	EdgesAdded   int
	EdgesSkipped int
}

// Merge appends the nodes and edges of incoming whose ids are not yet in
// g. Existing entries win and order is preserved.
func (g *Graph) Merge(incoming *Graph) MergeStats {
	var stats MergeStats
	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeIDs[n.ID] = true
	}
	for _, n := range incoming.Nodes {
		if nodeIDs[n.ID] {
			stats.NodesSkipped++
			continue
		}
		nodeIDs[n.ID] = true
		n.Properties = maps.Clone(n.Properties)
		g.Nodes = append(g.Nodes, n)
		stats.NodesAdded++
	}

	edgeIDs := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		edgeIDs[e.ID] = true
	}
	for _, e := range incoming.Edges {
		if edgeIDs[e.ID] {
			stats.EdgesSkipped++
			continue
		}
		edgeIDs[e.ID] = true
		g.Edges = append(g.Edges, e)
		stats.EdgesAdded++
	}
	return stats
}

// NodesByClass groups nodes by class, keeping graph order within a class.
func (g *Graph) NodesByClass() map[string][]Node {
	grouped := make(map[string][]Node)
	for _, n := range g.Nodes {
		grouped[n.Class] = append(grouped[n.Class], n)
	}
	return grouped
}

// EdgesFrom returns the edges leaving node id.
func (g *Graph) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// labelKeys are the properties tried, in order, when labelling a node.
var labelKeys = []string{"name", "fullName", "handle", "title"}

// Label returns a short human-readable name for n.
func Label(n Node) string {
	for _, key := range labelKeys {
		if s, ok := n.Properties[key].(string); ok && s != "" {
			return s
		}
	}
	return ShortID(n.ID)
}

// ShortID returns the first eight characters of id.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
