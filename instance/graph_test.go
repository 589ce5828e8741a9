package instance

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGraph = `{
  "nodes": [
    {"id": "p1", "class": "Person", "properties": {"fullName": "Ada Lovelace"}},
    {"id": "o1", "class": "Organisation", "properties": {"name": "Analytical Society"}},
    {"id": "e1", "class": "Event", "properties": {"title": "Meeting"}}
  ],
  "edges": [
    {"id": "x1", "type": "memberOf", "from": "p1", "to": "o1"},
    {"id": "x2", "type": "actedByPerson", "from": "e1", "to": "p1"}
  ]
}`

func TestDecodeEncode(t *testing.T) {
	g, err := Decode(strings.NewReader(sampleGraph))
	require.NoError(t, err)
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Edges, 2)

	n, ok := g.Node("o1")
	require.True(t, ok)
	assert.Equal(t, "Organisation", n.Class)
	_, ok = g.Node("missing")
	assert.False(t, ok)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g))
	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))
	assert.Contains(t, buf.String(), `"fullName": "Ada Lovelace"`)

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, g, again)
}

func TestDecodeEmptyDocument(t *testing.T) {
	g, err := Decode(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, g.Nodes)
	assert.NotNil(t, g.Edges)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Graph{}))
	assert.Equal(t, "{\n  \"nodes\": [],\n  \"edges\": []\n}\n", buf.String())

	_, err = Decode(strings.NewReader(`{"nodes": 3}`))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	g, err := Decode(strings.NewReader(sampleGraph))
	require.NoError(t, err)

	incoming := &Graph{
		Nodes: []Node{
			{ID: "p1", Class: "Person", Properties: map[string]any{"fullName": "Someone Else"}},
			{ID: "p2", Class: "Person", Properties: map[string]any{"fullName": "Charles Babbage"}},
		},
		Edges: []Edge{
			{ID: "x1", Type: "memberOf", From: "p2", To: "o1"},
			{ID: "x3", Type: "memberOf", From: "p2", To: "o1"},
		},
	}
	stats := g.Merge(incoming)
	assert.Equal(t, MergeStats{NodesAdded: 1, NodesSkipped: 1, EdgesAdded: 1, EdgesSkipped: 1}, stats)

	p1, _ := g.Node("p1")
	assert.Equal(t, "Ada Lovelace", p1.Properties["fullName"])
	assert.Equal(t, "p2", g.Nodes[3].ID)
	assert.Equal(t, "x3", g.Edges[2].ID)

	// A second merge of the same data is a no-op.
	stats = g.Merge(incoming)
	assert.Equal(t, 0, stats.NodesAdded+stats.EdgesAdded)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
		want  string
	}{
		{"name wins", map[string]any{"name": "Acme", "title": "T"}, "Acme"},
		{"full name", map[string]any{"fullName": "Ada"}, "Ada"},
		{"handle", map[string]any{"handle": "@ada"}, "@ada"},
		{"title", map[string]any{"title": "Launch"}, "Launch"},
		{"empty name skipped", map[string]any{"name": "", "title": "Launch"}, "Launch"},
		{"id prefix", nil, "0123abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(Node{ID: "0123abcdef", Properties: tt.props}))
		})
	}
	assert.Equal(t, "abc", ShortID("abc"))
}

func TestNewNodeID(t *testing.T) {
	a, b := NewNodeID(), NewEdgeID()
	assert.Len(t, a, 32)
	assert.Regexp(t, `^[0-9a-f]{32}$`, a)
	assert.NotEqual(t, a, b)
}

func TestNodesByClass(t *testing.T) {
	g, err := Decode(strings.NewReader(sampleGraph))
	require.NoError(t, err)
	grouped := g.NodesByClass()
	assert.Len(t, grouped, 3)
	assert.Equal(t, "p1", grouped["Person"][0].ID)
}

func TestOwner(t *testing.T) {
	g, err := Decode(strings.NewReader(sampleGraph))
	require.NoError(t, err)

	owner, err := g.Owner("e1", "actedByPerson", "actedByOrganisation")
	require.NoError(t, err)
	assert.Equal(t, Owner{Property: "actedByPerson", Target: "p1"}, owner)

	_, err = g.Owner("o1", "actedByPerson", "actedByOrganisation")
	assert.ErrorIs(t, err, ErrNoOwner)

	g.Edges = append(g.Edges, Edge{ID: "x9", Type: "actedByOrganisation", From: "e1", To: "o1"})
	_, err = g.Owner("e1", "actedByPerson", "actedByOrganisation")
	assert.ErrorIs(t, err, ErrAmbiguousOwner)
}

func TestClone(t *testing.T) {
	g, err := Decode(strings.NewReader(sampleGraph))
	require.NoError(t, err)
	c := g.Clone()
	c.Nodes[0].Properties["fullName"] = "changed"
	assert.Equal(t, "Ada Lovelace", g.Nodes[0].Properties["fullName"])
}
