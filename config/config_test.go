package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/sintology/validate"
	"github.com/c360studio/sintology/vocabulary"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ERD.Path != "erd/erd.md" {
		t.Errorf("expected default erd path erd/erd.md, got %s", cfg.ERD.Path)
	}
	if cfg.Ontology.Format != "turtle" {
		t.Errorf("expected default format turtle, got %s", cfg.Ontology.Format)
	}
	if cfg.Ontology.Namespace != vocabulary.DefaultNamespace {
		t.Errorf("expected default namespace %s, got %s", vocabulary.DefaultNamespace, cfg.Ontology.Namespace)
	}
	if !cfg.StrictForeignKeys() {
		t.Error("expected strict foreign keys by default")
	}
	if !cfg.CheckValues() {
		t.Error("expected value checks by default")
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected debounce 500ms, got %s", cfg.Watch.Debounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing erd path",
			modify:  func(c *Config) { c.ERD.Path = "" },
			wantErr: true,
		},
		{
			name:    "missing schema path",
			modify:  func(c *Config) { c.Schema.Path = "" },
			wantErr: true,
		},
		{
			name:    "ontology and schema share a path",
			modify:  func(c *Config) { c.Schema.Path = "./" + c.Ontology.Path },
			wantErr: true,
		},
		{
			name:    "unknown format",
			modify:  func(c *Config) { c.Ontology.Format = "rdfxml" },
			wantErr: true,
		},
		{
			name:    "format by extension",
			modify:  func(c *Config) { c.Ontology.Format = ".nt" },
			wantErr: false,
		},
		{
			name:    "namespace without separator",
			modify:  func(c *Config) { c.Ontology.Namespace = "http://example.org/x" },
			wantErr: true,
		},
		{
			name:    "nats store only",
			modify:  func(c *Config) { c.Store.Path = ""; c.Store.NATSURL = "nats://localhost:4222" },
			wantErr: false,
		},
		{
			name:    "no store",
			modify:  func(c *Config) { c.Store.Path = "" },
			wantErr: true,
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Watch.Debounce = -time.Second },
			wantErr: true,
		},
		{
			name: "exclusive group with one property",
			modify: func(c *Config) {
				c.Validation.ExclusiveGroups = []validate.ExclusiveGroup{{Name: "actor", Properties: []string{"actedByPerson"}}}
			},
			wantErr: true,
		},
		{
			name: "exclusive group without name",
			modify: func(c *Config) {
				c.Validation.ExclusiveGroups = []validate.ExclusiveGroup{{Properties: []string{"a", "b"}}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sintology.yaml")
	content := `
erd:
  path: docs/model.md
ontology:
  format: ntriples
  universal_fields: [created_at]
  strict_foreign_keys: false
watch:
  debounce: 2s
validation:
  exclusive_groups:
    - name: actor
      properties: [actedByPerson, actedByOrganisation]
      required: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "docs/model.md", cfg.ERD.Path)
	assert.Equal(t, "ntriples", cfg.Ontology.Format)
	assert.Equal(t, []string{"created_at"}, cfg.Ontology.UniversalFields)
	assert.False(t, cfg.StrictForeignKeys())
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	// Unset keys keep their defaults
	assert.Equal(t, "ontology/ontology.json", cfg.Schema.Path)
	require.Len(t, cfg.Validation.ExclusiveGroups, 1)
	assert.True(t, cfg.Validation.ExclusiveGroups[0].Required)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveToFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Ontology.ExcludeFields = []string{"internal_note"}

	require.NoError(t, cfg.SaveToFile(path))
	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	other := &Config{
		Ontology: OntologyConfig{Namespace: "http://example.com/ns#", StrictForeignKeys: boolPtr(false)},
		Store:    StoreConfig{NATSURL: "nats://nats:4222"},
	}

	base.Merge(other)

	if base.Ontology.Namespace != "http://example.com/ns#" {
		t.Errorf("expected merged namespace, got %s", base.Ontology.Namespace)
	}
	if base.StrictForeignKeys() {
		t.Error("expected strict foreign keys disabled after merge")
	}
	if base.Store.NATSURL != "nats://nats:4222" {
		t.Errorf("expected merged nats url, got %s", base.Store.NATSURL)
	}
	// Zero values in other leave the base alone
	if base.ERD.Path != "erd/erd.md" {
		t.Errorf("expected erd path unchanged, got %s", base.ERD.Path)
	}
	if !base.CheckValues() {
		t.Error("expected check_values unchanged")
	}

	base.Merge(nil)
}

func noEnv(string) (string, bool) { return "", false }

func TestLoaderLayering(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	nested := filepath.Join(project, "sub", "dir")
	require.NoError(t, os.MkdirAll(nested, 0755))

	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0755))
	require.NoError(t, os.WriteFile(userPath, []byte("ontology:\n  namespace: http://user.example/ns#\n  format: jsonld\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("ontology:\n  format: ntriples\n"), 0644))

	loader := NewLoader(nil, WithHomeDir(home), WithWorkDir(nested), WithLookupEnv(noEnv))
	cfg, err := loader.Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://user.example/ns#", cfg.Ontology.Namespace, "user layer applies")
	assert.Equal(t, "ntriples", cfg.Ontology.Format, "project layer wins over user layer")
	assert.True(t, cfg.StrictForeignKeys(), "defaults survive layers that do not set them")
}

func TestLoaderExplicitPathMustExist(t *testing.T) {
	loader := NewLoader(nil, WithHomeDir(t.TempDir()), WithWorkDir(t.TempDir()), WithLookupEnv(noEnv))
	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoaderEnvironment(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("erd:\n  path: model.md\n"), 0644))
	dotenv := "SINTOLOGY_FORMAT=ntriples\nSINTOLOGY_BUCKET=FROM_DOTENV\nSINTOLOGY_UNIVERSAL_FIELDS=created_at, updated_at\n"
	require.NoError(t, os.WriteFile(filepath.Join(project, DotEnvFile), []byte(dotenv), 0644))

	env := map[string]string{
		"SINTOLOGY_BUCKET":              "FROM_ENV",
		"SINTOLOGY_STRICT_FOREIGN_KEYS": "false",
		"SINTOLOGY_WATCH_DEBOUNCE":      "1s",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	loader := NewLoader(nil, WithHomeDir(t.TempDir()), WithWorkDir(project), WithLookupEnv(lookup))
	cfg, err := loader.Load("")
	require.NoError(t, err)

	assert.Equal(t, "model.md", cfg.ERD.Path)
	assert.Equal(t, "ntriples", cfg.Ontology.Format)
	assert.Equal(t, "FROM_ENV", cfg.Store.Bucket, "process environment wins over .env")
	assert.Equal(t, []string{"created_at", "updated_at"}, cfg.Ontology.UniversalFields)
	assert.False(t, cfg.StrictForeignKeys())
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
}

func TestLoaderRejectsBadEnvironment(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "SINTOLOGY_CHECK_VALUES" {
			return "maybe", true
		}
		return "", false
	}
	loader := NewLoader(nil, WithHomeDir(t.TempDir()), WithWorkDir(t.TempDir()), WithLookupEnv(lookup))
	_, err := loader.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SINTOLOGY_CHECK_VALUES")
}

func TestLoaderValidates(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("ontology:\n  format: rdfxml\n"), 0644))

	loader := NewLoader(nil, WithHomeDir(t.TempDir()), WithWorkDir(project), WithLookupEnv(noEnv))
	_, err := loader.Load("")
	assert.Error(t, err)
}
