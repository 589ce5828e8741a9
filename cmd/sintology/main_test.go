package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/sintology/instance"
	"github.com/c360studio/sintology/storage"
)

type workspace struct {
	dir    string
	config string
	store  string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	src, err := os.ReadFile(filepath.Join("..", "..", "testdata", "erd.md"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "erd.md"), src, 0o644))

	ws := workspace{
		dir:    dir,
		config: filepath.Join(dir, "sintology.yaml"),
		store:  filepath.Join(dir, "data", "graph.json"),
	}
	yaml := "erd:\n  path: " + filepath.Join(dir, "erd.md") + "\n" +
		"ontology:\n  path: " + filepath.Join(dir, "out", "sintology.ttl") + "\n" +
		"schema:\n  path: " + filepath.Join(dir, "out", "ontology.json") + "\n" +
		"store:\n  path: " + ws.store + "\n" +
		"metrics:\n  textfile: " + filepath.Join(dir, "sintology.prom") + "\n"
	require.NoError(t, os.WriteFile(ws.config, []byte(yaml), 0o644))
	return ws
}

func (ws workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", ws.config, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (ws workspace) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(ws.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validInstances = `{
  "nodes": [
    {"id": "p1", "class": "Person", "properties": {"fullName": "Ada Lovelace", "dateOfBirth": "1815-12-10"}},
    {"id": "o1", "class": "Organisation", "properties": {"name": "Analytical Society"}}
  ],
  "edges": [
    {"id": "e1", "type": "memberOf", "from": "p1", "to": "o1"}
  ]
}`

const mixedInstances = `{
  "nodes": [
    {"id": "p2", "class": "Person", "properties": {"fullName": "Charles Babbage"}},
    {"id": "p3", "class": "Person", "properties": {"middleName": "Ann"}},
    {"id": "c1", "class": "Campaign", "properties": {"name": "Difference Engine"}}
  ],
  "edges": [
    {"id": "e2", "type": "memberOf", "from": "p2", "to": "o1"},
    {"id": "e3", "type": "memberOf", "from": "c1", "to": "o1"}
  ]
}`

func TestVersion(t *testing.T) {
	ws := newWorkspace(t)
	out, err := ws.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sintology version "+Version)
}

func TestRootGenerates(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "5 classes, 16 properties")
	assert.FileExists(t, filepath.Join(ws.dir, "out", "sintology.ttl"))
	assert.FileExists(t, filepath.Join(ws.dir, "out", "ontology.json"))
	assert.FileExists(t, filepath.Join(ws.dir, "sintology.prom"))

	out, err = ws.run(t, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")
}

func TestGenerateFlagOverrides(t *testing.T) {
	ws := newWorkspace(t)
	nt := filepath.Join(ws.dir, "alt", "sintology.nt")

	_, err := ws.run(t, "generate", "--ontology-out", nt, "--format", "ntriples")
	require.NoError(t, err)
	data, err := os.ReadFile(nt)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<http://www.w3.org/2002/07/owl#Class>")
}

func TestGenerateSemanticError(t *testing.T) {
	ws := newWorkspace(t)
	ws.write(t, "erd.md", "erDiagram\n    PERSON ||--o{ GHOST : haunts\n    PERSON {\n        string id\n    }\n")

	_, err := ws.run(t, "generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GHOST")
	assert.NoFileExists(t, filepath.Join(ws.dir, "out", "ontology.json"))
}

func TestInspect(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "generate")
	require.NoError(t, err)

	out, err := ws.run(t, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "SocialMediaProfile (Social Media Profile)")
	assert.Contains(t, out, "  fullName: xsd:string")
	assert.Contains(t, out, "  memberOf -> Organisation")
	assert.Contains(t, out, "  splintersInto -> Organisation")
}

func TestInspectWithoutSchema(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "inspect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run generate first")
}

func TestValidate(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "generate")
	require.NoError(t, err)

	good := ws.write(t, "in/good.json", validInstances)
	out, err := ws.run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "1 file(s), 3 instance(s) checked, 0 rejected")

	bad := ws.write(t, "in/nested/bad.json", mixedInstances)
	out, err = ws.run(t, "validate", filepath.Join(ws.dir, "in", "**", "*.json"))
	require.Error(t, err)
	assert.Contains(t, out, bad)
	assert.Contains(t, out, "middleName")
	assert.Contains(t, out, "domain_mismatch")
	assert.Contains(t, out, "2 file(s)")
}

func TestResolveFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "sub/b.json", "sub/deeper/c.json", "sub/notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}

	files, err := resolveFiles([]string{
		filepath.Join(dir, "**", "*.json"),
		filepath.Join(dir, "a.json"),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "sub", "b.json"),
		filepath.Join(dir, "sub", "deeper", "c.json"),
	}, files)

	_, err = resolveFiles([]string{filepath.Join(dir, "*.yaml")})
	assert.Error(t, err)
}

func loadStore(t *testing.T, path string) *instance.Graph {
	t.Helper()
	g, err := storage.NewFileStore(path).Load(t.Context())
	require.NoError(t, err)
	return g
}

func TestIngest(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "generate")
	require.NoError(t, err)

	first := ws.write(t, "first.json", validInstances)
	out, err := ws.run(t, "ingest", "--load", first)
	require.NoError(t, err)
	assert.Contains(t, out, "nodes: 2 added")
	assert.Contains(t, out, "edges: 1 added")

	// Edges may point at nodes already in the store.
	second := ws.write(t, "second.json", mixedInstances)
	out, err = ws.run(t, "ingest", "--load", second)
	require.NoError(t, err)
	assert.Contains(t, out, "rejected: 2")

	g := loadStore(t, ws.store)
	var ids []string
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"p1", "o1", "p2", "c1"}, ids)
	require.Len(t, g.Edges, 2)
	assert.Equal(t, "e2", g.Edges[1].ID)

	// Re-ingesting is a no-op.
	out, err = ws.run(t, "ingest", "--load", first)
	require.NoError(t, err)
	assert.Contains(t, out, "nodes: 0 added, 2 already present")
}

func TestIngestStrict(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "generate")
	require.NoError(t, err)

	alt := filepath.Join(ws.dir, "alt.json")
	load := ws.write(t, "mixed.json", mixedInstances)
	_, err = ws.run(t, "ingest", "--load", load, "--data", alt, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing merged")
	assert.NoFileExists(t, alt)
}

func TestIngestRequiresLoad(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "ingest")
	assert.Error(t, err)
}
