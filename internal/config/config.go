// Package config loads Hermes's runtime configuration.
//
// Precedence (lowest to highest): hardcoded defaults, project
// .hermes.yaml/.yml, HERMES_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SearchConfig exposes the search engine's tunable constants; they are
// overridable mostly for tests.
type SearchConfig struct {
	ResultCacheTTL      time.Duration `yaml:"result_cache_ttl" json:"result_cache_ttl"`
	ResultCacheCapacity int           `yaml:"result_cache_capacity" json:"result_cache_capacity"`
	FetchCacheCapacity  int           `yaml:"fetch_cache_capacity" json:"fetch_cache_capacity"`
}

// Config is the full Hermes runtime configuration.
type Config struct {
	ProjectRoot string `yaml:"-" json:"project_root"`
	ProjectID   string `yaml:"project_id" json:"project_id"`
	DBPath      string `yaml:"db_path" json:"db_path"`

	// ReindexInterval is the auto-reindex period; 0 disables it.
	ReindexInterval time.Duration `yaml:"reindex_interval" json:"reindex_interval"`

	Search   SearchConfig `yaml:"search" json:"search"`
	LogLevel string       `yaml:"log_level" json:"log_level"`
}

// NewConfig returns a Config populated with defaults for the given
// project root.
func NewConfig(projectRoot string) *Config {
	return &Config{
		ProjectRoot:     projectRoot,
		ProjectID:       DeriveProjectID(projectRoot),
		DBPath:          filepath.Join(projectRoot, ".hermes.db"),
		ReindexInterval: 0,
		Search: SearchConfig{
			ResultCacheTTL:      60 * time.Second,
			ResultCacheCapacity: 256,
			FetchCacheCapacity:  50,
		},
		LogLevel: "info",
	}
}

// Load builds a Config for dir: defaults, then project file, then env.
func Load(dir string) (*Config, error) {
	cfg := NewConfig(dir)

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".hermes.yaml", ".hermes.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		c.mergeWith(&parsed)
		return nil
	}
	return nil
}

func (c *Config) mergeWith(other *Config) {
	if other.ProjectID != "" {
		c.ProjectID = other.ProjectID
	}
	if other.DBPath != "" {
		c.DBPath = other.DBPath
	}
	if other.ReindexInterval != 0 {
		c.ReindexInterval = other.ReindexInterval
	}
	if other.Search.ResultCacheTTL != 0 {
		c.Search.ResultCacheTTL = other.Search.ResultCacheTTL
	}
	if other.Search.ResultCacheCapacity != 0 {
		c.Search.ResultCacheCapacity = other.Search.ResultCacheCapacity
	}
	if other.Search.FetchCacheCapacity != 0 {
		c.Search.FetchCacheCapacity = other.Search.FetchCacheCapacity
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HERMES_PROJECT_ID"); v != "" {
		c.ProjectID = v
	}
	if v := os.Getenv("HERMES_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("HERMES_REINDEX_INTERVAL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			c.ReindexInterval = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("HERMES_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for obviously invalid values.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("project_id must not be empty")
	}
	if c.Search.ResultCacheCapacity < 0 || c.Search.FetchCacheCapacity < 0 {
		return fmt.Errorf("cache capacities must be non-negative")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %s", c.LogLevel)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
