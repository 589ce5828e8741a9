package validate_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/sintology/erd"
	"github.com/c360studio/sintology/instance"
	"github.com/c360studio/sintology/metrics"
	"github.com/c360studio/sintology/ontology"
	"github.com/c360studio/sintology/validate"
)

func fixtureModel(t *testing.T) *ontology.Model {
	t.Helper()
	d, err := erd.ParseFile(filepath.Join("..", "testdata", "erd.md"))
	require.NoError(t, err)
	m, err := ontology.Build(d)
	require.NoError(t, err)
	return m
}

func codes(res validate.Result) []validate.Code {
	var out []validate.Code
	for _, v := range res.Violations {
		out = append(out, v.Code)
	}
	return out
}

func TestValidateNode(t *testing.T) {
	v := validate.New(fixtureModel(t))

	tests := []struct {
		name  string
		node  instance.Node
		codes []validate.Code
	}{
		{
			name: "known datatype property",
			node: instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"fullName": "Ada Lovelace"}},
		},
		{
			name: "date value",
			node: instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"dateOfBirth": "1815-12-10"}},
		},
		{
			name: "shared property",
			node: instance.Node{ID: "c1", Class: "Campaign", Properties: map[string]any{"name": "Spring", "launchedAt": "2024-03-01T09:00:00Z"}},
		},
		{
			name:  "unknown property",
			node:  instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"middleName": "Augusta"}},
			codes: []validate.Code{validate.CodeUnknownProperty},
		},
		{
			name:  "relationship used as property",
			node:  instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"memberOf": "o1"}},
			codes: []validate.Code{validate.CodeNotDatatypeProperty},
		},
		{
			name:  "property of another class",
			node:  instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"foundedOn": "1900-01-01"}},
			codes: []validate.Code{validate.CodeDomainMismatch},
		},
		{
			name:  "bad date",
			node:  instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"dateOfBirth": "10/12/1815"}},
			codes: []validate.Code{validate.CodeInvalidValue},
		},
		{
			name:  "bad date-time",
			node:  instance.Node{ID: "e1", Class: "Event", Properties: map[string]any{"occurredAt": "2024-03-01"}},
			codes: []validate.Code{validate.CodeInvalidValue},
		},
		{
			name:  "non-string value",
			node:  instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"name": 42.0}},
			codes: []validate.Code{validate.CodeInvalidValue},
		},
		{
			name:  "unknown class",
			node:  instance.Node{ID: "x1", Class: "Spaceship", Properties: map[string]any{"name": "x"}},
			codes: []validate.Code{validate.CodeUnknownClass},
		},
		{
			name:  "missing id",
			node:  instance.Node{Class: "Person"},
			codes: []validate.Code{validate.CodeMissingID},
		},
		{
			name:  "violations in key order",
			node:  instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"zz": "x", "aa": "y"}},
			codes: []validate.Code{validate.CodeUnknownProperty, validate.CodeUnknownProperty},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateNode(tt.node)
			assert.Equal(t, tt.codes, codes(res))
			assert.Equal(t, len(tt.codes) == 0, res.Accepted())
			assert.Equal(t, validate.KindNode, res.Kind)
		})
	}
}

func TestValidateNode_Suggestions(t *testing.T) {
	v := validate.New(fixtureModel(t))

	res := v.ValidateNode(instance.Node{ID: "p1", Class: "Persn"})
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "Person", res.Violations[0].Suggestion)
	assert.Contains(t, res.Violations[0].String(), `did you mean "Person"?`)

	res = v.ValidateNode(instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"fulName": "Ada"}})
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "fullName", res.Violations[0].Suggestion)
	assert.Equal(t, "fulName", res.Violations[0].Field)

	res = v.ValidateNode(instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"middleName": "A"}})
	require.Len(t, res.Violations, 1)
	assert.Empty(t, res.Violations[0].Suggestion)
}

func TestValidateNode_ValueChecksDisabled(t *testing.T) {
	v := validate.New(fixtureModel(t), validate.WithValueChecks(false))
	res := v.ValidateNode(instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"dateOfBirth": "someday"}})
	assert.True(t, res.Accepted())
}

func TestValidateNode_DoesNotMutate(t *testing.T) {
	v := validate.New(fixtureModel(t))
	n := instance.Node{ID: "p1", Class: "Person", Properties: map[string]any{"middleName": "A"}}
	v.ValidateNode(n)
	assert.Equal(t, map[string]any{"middleName": "A"}, n.Properties)
}

func lookupGraph() *instance.Graph {
	return &instance.Graph{Nodes: []instance.Node{
		{ID: "p1", Class: "Person"},
		{ID: "p2", Class: "Person"},
		{ID: "o1", Class: "Organisation"},
		{ID: "c1", Class: "Campaign"},
		{ID: "e1", Class: "Event"},
	}}
}

func TestValidateEdge(t *testing.T) {
	v := validate.New(fixtureModel(t))
	g := lookupGraph()

	tests := []struct {
		name  string
		edge  instance.Edge
		codes []validate.Code
	}{
		{"member of", instance.Edge{ID: "x1", Type: "memberOf", From: "p1", To: "o1"}, nil},
		{"self reference", instance.Edge{ID: "x1", Type: "splintersInto", From: "o1", To: "o1"}, nil},
		{"member of from campaign", instance.Edge{ID: "x1", Type: "memberOf", From: "c1", To: "o1"},
			[]validate.Code{validate.CodeDomainMismatch}},
		{"wrong target class", instance.Edge{ID: "x1", Type: "memberOf", From: "p1", To: "p2"},
			[]validate.Code{validate.CodeRangeMismatch}},
		{"unknown relationship", instance.Edge{ID: "x1", Type: "knows", From: "p1", To: "p2"},
			[]validate.Code{validate.CodeUnknownRelationship}},
		{"datatype property as relationship", instance.Edge{ID: "x1", Type: "fullName", From: "p1", To: "p2"},
			[]validate.Code{validate.CodeUnknownRelationship}},
		{"dangling ends", instance.Edge{ID: "x1", Type: "memberOf", From: "ghost", To: "void"},
			[]validate.Code{validate.CodeDanglingReference, validate.CodeDanglingReference}},
		{"missing id", instance.Edge{Type: "runs", From: "o1", To: "c1"},
			[]validate.Code{validate.CodeMissingID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateEdge(tt.edge, g)
			assert.Equal(t, tt.codes, codes(res))
			assert.Equal(t, validate.KindEdge, res.Kind)
		})
	}

	res := v.ValidateEdge(instance.Edge{ID: "x1", Type: "memberof", From: "p1", To: "o1"}, g)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "memberOf", res.Violations[0].Suggestion)
}

func TestValidateGraph(t *testing.T) {
	rec := metrics.NewRecorder()
	v := validate.New(fixtureModel(t), validate.WithMetrics(rec))

	g := &instance.Graph{
		Nodes: []instance.Node{
			{ID: "p1", Class: "Person", Properties: map[string]any{"fullName": "Ada"}},
			{ID: "o1", Class: "Organisation", Properties: map[string]any{"name": "Society"}},
			{ID: "p1", Class: "Person"},
			{ID: "bad", Class: "Person", Properties: map[string]any{"middleName": "x"}},
		},
		Edges: []instance.Edge{
			{ID: "x1", Type: "memberOf", From: "p1", To: "o1"},
			{ID: "x1", Type: "memberOf", From: "p1", To: "o1"},
			{ID: "x2", Type: "memberOf", From: "bad", To: "o1"},
		},
	}
	rep := v.ValidateGraph(g)
	require.Len(t, rep.Nodes, 4)
	require.Len(t, rep.Edges, 3)

	assert.True(t, rep.Nodes[0].Accepted())
	assert.True(t, rep.Nodes[1].Accepted())
	assert.Equal(t, []validate.Code{validate.CodeDuplicateID}, codes(rep.Nodes[2]))
	assert.Equal(t, []validate.Code{validate.CodeUnknownProperty}, codes(rep.Nodes[3]))
	assert.True(t, rep.Edges[0].Accepted())
	assert.Equal(t, []validate.Code{validate.CodeDuplicateID}, codes(rep.Edges[1]))
	assert.Equal(t, []validate.Code{validate.CodeDanglingReference}, codes(rep.Edges[2]))
	assert.False(t, rep.Accepted())
	assert.Len(t, rep.Rejected(), 4)

	accepted := rep.Filter(g)
	assert.Len(t, accepted.Nodes, 2)
	assert.Len(t, accepted.Edges, 1)

	expected := `
# HELP sintology_validated_instances_total Validated nodes and edges by result.
# TYPE sintology_validated_instances_total counter
sintology_validated_instances_total{kind="edge",result="accepted"} 1
sintology_validated_instances_total{kind="edge",result="rejected"} 2
sintology_validated_instances_total{kind="node",result="accepted"} 2
sintology_validated_instances_total{kind="node",result="rejected"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
		"sintology_validated_instances_total"))
}

func TestValidateGraph_KnownNodes(t *testing.T) {
	v := validate.New(fixtureModel(t))
	store := lookupGraph()

	incoming := &instance.Graph{
		Nodes: []instance.Node{{ID: "p9", Class: "Person"}},
		Edges: []instance.Edge{
			{ID: "x1", Type: "memberOf", From: "p9", To: "o1"},
			{ID: "x2", Type: "memberOf", From: "p9", To: "o404"},
		},
	}
	rep := v.ValidateGraph(incoming, store)
	assert.True(t, rep.Edges[0].Accepted())
	assert.Equal(t, []validate.Code{validate.CodeDanglingReference}, codes(rep.Edges[1]))
}

func TestValidateGraph_StoredIDWithOtherClass(t *testing.T) {
	v := validate.New(fixtureModel(t))
	store := &instance.Graph{Nodes: []instance.Node{
		{ID: "n1", Class: "Campaign"},
		{ID: "n2", Class: "Person"},
	}}

	incoming := &instance.Graph{
		Nodes: []instance.Node{
			{ID: "n1", Class: "Person"},
			{ID: "n2", Class: "Person"},
			{ID: "o1", Class: "Organisation"},
		},
		Edges: []instance.Edge{
			{ID: "x1", Type: "memberOf", From: "n1", To: "o1"},
			{ID: "x2", Type: "memberOf", From: "n2", To: "o1"},
		},
	}
	rep := v.ValidateGraph(incoming, store)

	assert.Equal(t, []validate.Code{validate.CodeDuplicateID}, codes(rep.Nodes[0]))
	assert.Contains(t, rep.Nodes[0].Violations[0].Message, "Campaign")
	assert.True(t, rep.Nodes[1].Accepted(), "same class as the stored node")
	assert.True(t, rep.Nodes[2].Accepted())
	assert.Equal(t, []validate.Code{validate.CodeDanglingReference}, codes(rep.Edges[0]))
	assert.True(t, rep.Edges[1].Accepted())

	// Whatever survives the merge still validates.
	merged := store.Clone()
	merged.Merge(rep.Filter(incoming))
	assert.True(t, v.ValidateGraph(merged).Accepted())
}

func TestValidateGraph_ExclusiveGroups(t *testing.T) {
	actor := validate.ExclusiveGroup{
		Name:       "actor",
		Properties: []string{"actedByPerson", "actedByOrganisation"},
		Required:   true,
	}
	g := &instance.Graph{
		Nodes: []instance.Node{
			{ID: "p1", Class: "Person"},
			{ID: "o1", Class: "Organisation"},
			{ID: "e1", Class: "Event"},
			{ID: "e2", Class: "Event"},
			{ID: "e3", Class: "Event"},
		},
		Edges: []instance.Edge{
			{ID: "x1", Type: "actedByPerson", From: "e1", To: "p1"},
			{ID: "x2", Type: "actedByPerson", From: "e2", To: "p1"},
			{ID: "x3", Type: "actedByOrganisation", From: "e2", To: "o1"},
		},
	}

	// Unenforced unless configured.
	rep := validate.New(fixtureModel(t)).ValidateGraph(g)
	assert.True(t, rep.Accepted())

	rep = validate.New(fixtureModel(t), validate.WithExclusiveGroups(actor)).ValidateGraph(g)
	assert.True(t, rep.Nodes[0].Accepted(), "group does not apply to Person")
	assert.True(t, rep.Nodes[2].Accepted())
	assert.Equal(t, []validate.Code{validate.CodeExclusiveGroup}, codes(rep.Nodes[3]))
	assert.Contains(t, rep.Nodes[3].Violations[0].Message, "at most one")
	assert.Equal(t, []validate.Code{validate.CodeExclusiveGroup}, codes(rep.Nodes[4]))
	assert.Contains(t, rep.Nodes[4].Violations[0].Message, "exactly one")

	// Edges leaving a rejected node are rejected with it.
	assert.Equal(t, []validate.Code{validate.CodeDanglingReference}, codes(rep.Edges[1]))

	actor.Required = false
	rep = validate.New(fixtureModel(t), validate.WithExclusiveGroups(actor)).ValidateGraph(g)
	assert.True(t, rep.Nodes[4].Accepted())
}
