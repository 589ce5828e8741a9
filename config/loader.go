package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "sintology.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/sintology"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
	// DotEnvFile is read from the project directory
	DotEnvFile = ".env"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "SINTOLOGY_"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  *slog.Logger
	homeDir string
	workDir string
	lookup  func(string) (string, bool)
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithHomeDir overrides the directory holding the user config
func WithHomeDir(dir string) LoaderOption {
	return func(l *Loader) { l.homeDir = dir }
}

// WithWorkDir overrides the directory the project config search starts from
func WithWorkDir(dir string) LoaderOption {
	return func(l *Loader) { l.workDir = dir }
}

// WithLookupEnv overrides the environment lookup
func WithLookupEnv(lookup func(string) (string, bool)) LoaderOption {
	return func(l *Loader) { l.lookup = lookup }
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{logger: logger, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}
	if l.homeDir == "" {
		l.homeDir, _ = os.UserHomeDir()
	}
	if l.workDir == "" {
		l.workDir, _ = os.Getwd()
	}
	return l
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/sintology/config.yaml)
// 3. Project config (explicit path, or sintology.yaml in current or parent directories)
// 4. .env file next to the project config
// 5. SINTOLOGY_* environment variables
func (l *Loader) Load(explicitPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Load user config
	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		var userConfig Config
		if err := decodeFile(userConfigPath, &userConfig); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(&userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	// Load project config
	projectDir := l.workDir
	projectConfigPath := explicitPath
	if projectConfigPath == "" {
		projectConfigPath = l.findProjectConfig()
	}
	if projectConfigPath != "" {
		var projectConfig Config
		if err := decodeFile(projectConfigPath, &projectConfig); err != nil {
			if explicitPath != "" {
				return nil, err
			}
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		} else {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(&projectConfig)
			projectDir = filepath.Dir(projectConfigPath)
		}
	} else {
		l.logger.Debug("No project config found")
	}

	// Environment, with .env values below real variables
	dotenv, err := godotenv.Read(filepath.Join(projectDir, DotEnvFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("Failed to read .env", slog.String("dir", projectDir), slog.String("error", err.Error()))
	}
	env := func(key string) (string, bool) {
		if v, ok := l.lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnv(config, env); err != nil {
		return nil, err
	}

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv overlays SINTOLOGY_* variables onto config
func applyEnv(config *Config, env func(string) (string, bool)) error {
	strs := map[string]*string{
		"ERD":              &config.ERD.Path,
		"ONTOLOGY":         &config.Ontology.Path,
		"FORMAT":           &config.Ontology.Format,
		"NAMESPACE":        &config.Ontology.Namespace,
		"SCHEMA":           &config.Schema.Path,
		"DATA":             &config.Store.Path,
		"NATS_URL":         &config.Store.NATSURL,
		"BUCKET":           &config.Store.Bucket,
		"METRICS_TEXTFILE": &config.Metrics.Textfile,
	}
	for name, dst := range strs {
		if v, ok := env(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	lists := map[string]*[]string{
		"UNIVERSAL_FIELDS": &config.Ontology.UniversalFields,
		"EXCLUDE_FIELDS":   &config.Ontology.ExcludeFields,
	}
	for name, dst := range lists {
		if v, ok := env(EnvPrefix + name); ok {
			*dst = splitList(v)
		}
	}

	bools := map[string]**bool{
		"STRICT_FOREIGN_KEYS": &config.Ontology.StrictForeignKeys,
		"CHECK_VALUES":        &config.Validation.CheckValues,
	}
	for name, dst := range bools {
		v, ok := env(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = boolPtr(b)
	}

	if v, ok := env(EnvPrefix + "WATCH_DEBOUNCE"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sWATCH_DEBOUNCE: %w", EnvPrefix, err)
		}
		config.Watch.Debounce = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	if l.homeDir == "" {
		return ""
	}
	return filepath.Join(l.homeDir, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for sintology.yaml in the work directory and its parents
func (l *Loader) findProjectConfig() string {
	if l.workDir == "" {
		return ""
	}

	dir := l.workDir
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}
