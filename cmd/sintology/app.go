package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/sintology/config"
	"github.com/c360studio/sintology/metrics"
	"github.com/c360studio/sintology/ontology"
	"github.com/c360studio/sintology/pipeline"
	"github.com/c360studio/sintology/schema"
	"github.com/c360studio/sintology/storage"
	"github.com/c360studio/sintology/validate"
)

// App wires configuration to the pipeline, validator and stores.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder
	schema  *schema.Snapshot
}

// newApp loads configuration and applies flag overrides, the last layer.
func newApp(flags *globalFlags) (*App, error) {
	cfg, err := config.NewLoader(slog.Default()).Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if flags.erdPath != "" {
		cfg.ERD.Path = flags.erdPath
	}
	if flags.ontologyOut != "" {
		cfg.Ontology.Path = flags.ontologyOut
	}
	if flags.schemaOut != "" {
		cfg.Schema.Path = flags.schemaOut
	}
	if flags.format != "" {
		cfg.Ontology.Format = flags.format
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &App{
		cfg:    cfg,
		logger: slog.Default(),
		schema: schema.NewSnapshot(cfg.Schema.Path),
	}
	if cfg.Metrics.Textfile != "" {
		app.metrics = metrics.NewRecorder()
	}
	return app, nil
}

func (a *App) generator() (*pipeline.Generator, error) {
	g, err := pipeline.NewGenerator(a.cfg)
	if err != nil {
		return nil, err
	}
	g.Logger = a.logger
	g.Metrics = a.metrics
	return g, nil
}

// model returns the process-wide schema snapshot, loading it on first use.
func (a *App) model() (*ontology.Model, error) {
	m, err := a.schema.Load()
	if err != nil {
		return nil, fmt.Errorf("load schema (run generate first?): %w", err)
	}
	return m, nil
}

func (a *App) validator(m *ontology.Model) *validate.Validator {
	return validate.New(m,
		validate.WithValueChecks(a.cfg.CheckValues()),
		validate.WithExclusiveGroups(a.cfg.Validation.ExclusiveGroups...),
		validate.WithMetrics(a.metrics),
		validate.WithLogger(a.logger),
	)
}

// openStore returns the configured instance store and a func releasing it.
func (a *App) openStore(ctx context.Context) (storage.GraphStore, func(), error) {
	if a.cfg.Store.NATSURL != "" {
		kv, err := storage.DialKVStore(ctx, a.cfg.Store.NATSURL, a.cfg.Store.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {
			if err := kv.Close(); err != nil {
				a.logger.Warn("Failed to close store", "error", err)
			}
		}, nil
	}
	return storage.NewFileStore(a.cfg.Store.Path), func() {}, nil
}

// flushMetrics writes the metrics textfile when one is configured.
func (a *App) flushMetrics() {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.logger.Warn("Failed to write metrics", "path", a.cfg.Metrics.Textfile, "error", err)
	}
}
