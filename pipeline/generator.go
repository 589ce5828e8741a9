// Package pipeline regenerates the ontology and schema documents from the
// ERD source in one pass.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/c360studio/sintology/config"
	"github.com/c360studio/sintology/erd"
	"github.com/c360studio/sintology/export"
	"github.com/c360studio/sintology/metrics"
	"github.com/c360studio/sintology/ontology"
	"github.com/c360studio/sintology/schema"
	"github.com/c360studio/sintology/storage"
)

// Artifact is one generated document.
type Artifact struct {
	Name   string
	Path   string
	Render func(w io.Writer, m *ontology.Model) error
}

// OntologyArtifact renders the ontology document in format under ns.
func OntologyArtifact(path, ns string, format export.Format) Artifact {
	exporter := export.NewOntologyExporter(ns)
	return Artifact{
		Name: "ontology",
		Path: path,
		Render: func(w io.Writer, m *ontology.Model) error {
			return exporter.Write(w, m, format)
		},
	}
}

// SchemaArtifact renders the runtime schema document.
func SchemaArtifact(path string) Artifact {
	return Artifact{
		Name:   "schema",
		Path:   path,
		Render: schema.Encode,
	}
}

// ArtifactResult describes a committed artifact.
type ArtifactResult struct {
	Name  string
	Path  string
	Bytes int
	// Changed is false when the file already held identical content and
	// was left alone.
	Changed bool
}

// Result is the outcome of a successful run.
type Result struct {
	Model     *ontology.Model
	Artifacts []ArtifactResult
	Warnings  []string
	Duration  time.Duration
}

// Generator runs ERD → model → artifacts.
type Generator struct {
	ERDPath   string
	Artifacts []Artifact
	Options   []ontology.Option
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
}

// NewGenerator builds a generator from configuration.
func NewGenerator(cfg *config.Config) (*Generator, error) {
	format, err := export.ParseFormat(cfg.Ontology.Format)
	if err != nil {
		return nil, err
	}
	return &Generator{
		ERDPath: cfg.ERD.Path,
		Artifacts: []Artifact{
			OntologyArtifact(cfg.Ontology.Path, cfg.Ontology.Namespace, format),
			SchemaArtifact(cfg.Schema.Path),
		},
		Options: []ontology.Option{
			ontology.WithUniversalFields(cfg.Ontology.UniversalFields...),
			ontology.WithExcludedFields(cfg.Ontology.ExcludeFields...),
			ontology.WithStrictForeignKeys(cfg.StrictForeignKeys()),
		},
	}, nil
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// Run regenerates every artifact. Nothing is written unless the ERD parses,
// the model builds and every artifact renders. Each artifact is then
// replaced atomically.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := g.run(ctx)
	elapsed := time.Since(start)
	g.Metrics.ObserveGeneration(elapsed, err)

	if err != nil {
		g.logger().Error("Generation failed", "path", g.ERDPath, "error", err)
		return nil, err
	}
	res.Duration = elapsed
	g.Metrics.ObserveModel(res.Model)
	g.logger().Info("Generated ontology",
		"path", g.ERDPath,
		"classes", len(res.Model.Classes()),
		"properties", len(res.Model.Properties()),
		"duration", elapsed)
	return res, nil
}

func (g *Generator) run(ctx context.Context) (*Result, error) {
	src, err := os.ReadFile(g.ERDPath)
	if err != nil {
		return nil, &storage.IOError{Op: "read", Path: g.ERDPath, Err: err}
	}

	diagram, err := erd.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.ERDPath, err)
	}

	opts := append([]ontology.Option{ontology.WithLogger(g.logger())}, g.Options...)
	model, err := ontology.Build(diagram, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.ERDPath, err)
	}

	rendered := make([][]byte, len(g.Artifacts))
	for i, a := range g.Artifacts {
		var buf bytes.Buffer
		if err := a.Render(&buf, model); err != nil {
			return nil, fmt.Errorf("render %s: %w", a.Name, err)
		}
		rendered[i] = buf.Bytes()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Model: model, Warnings: model.Warnings()}
	for i, a := range g.Artifacts {
		changed, err := commit(a.Path, rendered[i])
		if err != nil {
			return nil, err
		}
		res.Artifacts = append(res.Artifacts, ArtifactResult{
			Name:    a.Name,
			Path:    a.Path,
			Bytes:   len(rendered[i]),
			Changed: changed,
		})
	}
	return res, nil
}

// writeFile replaces a committed artifact. Tests swap it to fail a write.
var writeFile = storage.WriteFileAtomic

// commit writes data unless path already holds exactly data.
func commit(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, data):
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, &storage.IOError{Op: "read", Path: path, Err: err}
	}
	if err := writeFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
