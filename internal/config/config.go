package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "skl2pmml.yaml"

// Config holds all skl2pmml configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Pipeline lowering options
	Conversion ConversionConfig `yaml:"conversion"`

	// Document header
	Header HeaderConfig `yaml:"header"`

	// Conversion history
	Catalog CatalogConfig `yaml:"catalog"`

	// CLI batch mode
	Batch BatchConfig `yaml:"batch"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "skl2pmml",
		Version: "0.9.0",

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "console",
			DebugMode: false,
		},

		Conversion: DefaultConversionConfig(),

		Header: HeaderConfig{
			ApplicationName:    "skl2pmml",
			ApplicationVersion: "0.9.0",
		},

		Catalog: CatalogConfig{
			Enabled: false,
			Path:    filepath.Join(".skl2pmml", "catalog.db"),
		},

		Batch: BatchConfig{
			MaxParallel: 4,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("SKL2PMML_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if debug := os.Getenv("SKL2PMML_DEBUG"); debug != "" {
		if v, err := strconv.ParseBool(debug); err == nil {
			c.Logging.DebugMode = v
		}
	}

	// A catalog path from the environment implies the catalog is wanted
	if path := os.Getenv("SKL2PMML_CATALOG"); path != "" {
		c.Catalog.Path = path
		c.Catalog.Enabled = true
	}

	if parallel := os.Getenv("SKL2PMML_PARALLEL"); parallel != "" {
		if n, err := strconv.Atoi(parallel); err == nil && n > 0 {
			c.Batch.MaxParallel = n
		}
	}
}

// Validate checks the configuration for values the CLI cannot run with.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Logging.Format)
	}

	if c.Batch.MaxParallel < 1 {
		return fmt.Errorf("batch.max_parallel must be at least 1, got %d", c.Batch.MaxParallel)
	}

	if c.Catalog.Enabled && c.Catalog.Path == "" {
		return fmt.Errorf("catalog enabled but no path configured")
	}

	return nil
}

// IsCatalogEnabled returns whether conversions are recorded.
func (c *Config) IsCatalogEnabled() bool {
	return c.Catalog.Enabled
}
