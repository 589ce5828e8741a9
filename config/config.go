// Package config provides configuration loading and management for Sintology.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/sintology/export"
	"github.com/c360studio/sintology/storage"
	"github.com/c360studio/sintology/validate"
	"github.com/c360studio/sintology/vocabulary"
)

// Config represents the complete Sintology configuration
type Config struct {
	ERD        ERDConfig        `yaml:"erd"`
	Ontology   OntologyConfig   `yaml:"ontology"`
	Schema     SchemaConfig     `yaml:"schema"`
	Store      StoreConfig      `yaml:"store"`
	Validation ValidationConfig `yaml:"validation"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ERDConfig locates the source diagram
type ERDConfig struct {
	// Path is the Markdown or Mermaid file holding the ERD
	Path string `yaml:"path"`
}

// OntologyConfig configures the generated ontology document and the model builder
type OntologyConfig struct {
	Path string `yaml:"path"`
	// Format is turtle, ntriples or jsonld
	Format string `yaml:"format"`
	// Namespace is the base IRI of generated classes and properties
	Namespace string `yaml:"namespace"`
	// UniversalFields are source fields whose property applies to every class
	UniversalFields []string `yaml:"universal_fields,omitempty"`
	// ExcludeFields are source fields that never become properties
	ExcludeFields []string `yaml:"exclude_fields,omitempty"`
	// StrictForeignKeys rejects x_id fields naming an entity they have no relationship with
	StrictForeignKeys *bool `yaml:"strict_foreign_keys"`
}

// SchemaConfig locates the runtime schema document
type SchemaConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig configures the instance store
type StoreConfig struct {
	// Path is the JSON instance store file
	Path string `yaml:"path"`
	// NATSURL selects the JetStream KV store instead of the file when set
	NATSURL string `yaml:"nats_url"`
	// Bucket is the KV bucket name
	Bucket string `yaml:"bucket"`
}

// ValidationConfig configures the instance validator
type ValidationConfig struct {
	// CheckValues enables date and dateTime lexical checks (default: true)
	CheckValues *bool `yaml:"check_values"`
	// ExclusiveGroups are enforced when non-empty
	ExclusiveGroups []validate.ExclusiveGroup `yaml:"exclusive_groups,omitempty"`
}

// MetricsConfig configures metrics export
type MetricsConfig struct {
	// Textfile is written after each command when set
	Textfile string `yaml:"textfile"`
}

// WatchConfig configures the ERD watcher
type WatchConfig struct {
	// Debounce is the quiet period after the last change before regenerating
	Debounce time.Duration `yaml:"debounce"`
}

func boolPtr(b bool) *bool { return &b }

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ERD: ERDConfig{
			Path: "erd/erd.md",
		},
		Ontology: OntologyConfig{
			Path:              "ontology/sintology.ttl",
			Format:            string(export.FormatTurtle),
			Namespace:         vocabulary.DefaultNamespace,
			StrictForeignKeys: boolPtr(true),
		},
		Schema: SchemaConfig{
			Path: "ontology/ontology.json",
		},
		Store: StoreConfig{
			Path:   "data/graph.json",
			Bucket: storage.DefaultBucket,
		},
		Validation: ValidationConfig{
			CheckValues: boolPtr(true),
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// StrictForeignKeys reports the effective strict_foreign_keys setting
func (c *Config) StrictForeignKeys() bool {
	return c.Ontology.StrictForeignKeys == nil || *c.Ontology.StrictForeignKeys
}

// CheckValues reports the effective check_values setting
func (c *Config) CheckValues() bool {
	return c.Validation.CheckValues == nil || *c.Validation.CheckValues
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.ERD.Path == "" {
		return fmt.Errorf("erd.path is required")
	}
	if c.Ontology.Path == "" {
		return fmt.Errorf("ontology.path is required")
	}
	if c.Schema.Path == "" {
		return fmt.Errorf("schema.path is required")
	}
	if filepath.Clean(c.Ontology.Path) == filepath.Clean(c.Schema.Path) {
		return fmt.Errorf("ontology.path and schema.path must differ")
	}
	if _, err := export.ParseFormat(c.Ontology.Format); err != nil {
		return fmt.Errorf("ontology.format: %w", err)
	}
	if ns := c.Ontology.Namespace; ns != "" && !strings.HasSuffix(ns, "#") && !strings.HasSuffix(ns, "/") {
		return fmt.Errorf("ontology.namespace must end with '#' or '/'")
	}
	if c.Store.Path == "" && c.Store.NATSURL == "" {
		return fmt.Errorf("store.path or store.nats_url is required")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	for i, g := range c.Validation.ExclusiveGroups {
		if g.Name == "" {
			return fmt.Errorf("validation.exclusive_groups[%d].name is required", i)
		}
		if len(g.Properties) < 2 {
			return fmt.Errorf("validation.exclusive_groups[%d] needs at least two properties", i)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := decodeFile(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

func decodeFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.ERD.Path != "" {
		c.ERD.Path = other.ERD.Path
	}

	// Ontology
	if other.Ontology.Path != "" {
		c.Ontology.Path = other.Ontology.Path
	}
	if other.Ontology.Format != "" {
		c.Ontology.Format = other.Ontology.Format
	}
	if other.Ontology.Namespace != "" {
		c.Ontology.Namespace = other.Ontology.Namespace
	}
	if len(other.Ontology.UniversalFields) > 0 {
		c.Ontology.UniversalFields = other.Ontology.UniversalFields
	}
	if len(other.Ontology.ExcludeFields) > 0 {
		c.Ontology.ExcludeFields = other.Ontology.ExcludeFields
	}
	if other.Ontology.StrictForeignKeys != nil {
		c.Ontology.StrictForeignKeys = boolPtr(*other.Ontology.StrictForeignKeys)
	}

	if other.Schema.Path != "" {
		c.Schema.Path = other.Schema.Path
	}

	// Store
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.Store.NATSURL != "" {
		c.Store.NATSURL = other.Store.NATSURL
	}
	if other.Store.Bucket != "" {
		c.Store.Bucket = other.Store.Bucket
	}

	// Validation
	if other.Validation.CheckValues != nil {
		c.Validation.CheckValues = boolPtr(*other.Validation.CheckValues)
	}
	if len(other.Validation.ExclusiveGroups) > 0 {
		c.Validation.ExclusiveGroups = other.Validation.ExclusiveGroups
	}

	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}
