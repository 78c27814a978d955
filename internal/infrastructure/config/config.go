package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the m2web CLI.
// All configuration is loaded from YAML and can be overridden by environment
// variables, so credentials never have to live in the file.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Inventory InventoryConfig `yaml:"inventory"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig contains the M2Web connection and authentication parameters.
type APIConfig struct {
	BaseURL      string `yaml:"base_url"`
	Account      string `yaml:"account"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	DeveloperID  string `yaml:"developer_id"`
	StatefulAuth bool   `yaml:"stateful_auth"`
}

// InventoryConfig contains the local SQLite device cache settings.
type InventoryConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MetricsConfig contains the InfluxDB status-export settings.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable
// overrides.
//
// The loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern M2WEB_SECTION_KEY, for example
// M2WEB_API_PASSWORD or M2WEB_METRICS_TOKEN.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults. The API section is
// left empty on purpose: the client library fills in its own defaults and
// real deployments override everything anyway.
func defaultConfig() *Config {
	return &Config{
		Inventory: InventoryConfig{
			Path:        "./data/inventory.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Metrics: MetricsConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides.
// Credentials are the main use case: keep them out of config.yaml.
func applyEnvOverrides(cfg *Config) {
	// API
	if v := os.Getenv("M2WEB_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("M2WEB_API_ACCOUNT"); v != "" {
		cfg.API.Account = v
	}
	if v := os.Getenv("M2WEB_API_USERNAME"); v != "" {
		cfg.API.Username = v
	}
	if v := os.Getenv("M2WEB_API_PASSWORD"); v != "" {
		cfg.API.Password = v
	}
	if v := os.Getenv("M2WEB_API_DEVELOPER_ID"); v != "" {
		cfg.API.DeveloperID = v
	}

	// Inventory
	if v := os.Getenv("M2WEB_INVENTORY_PATH"); v != "" {
		cfg.Inventory.Path = v
	}

	// Metrics
	if v := os.Getenv("M2WEB_METRICS_TOKEN"); v != "" {
		cfg.Metrics.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	// The developer id is a Talk2M API key, always issued as a UUID.
	if c.API.DeveloperID != "" {
		if _, err := uuid.Parse(c.API.DeveloperID); err != nil {
			errs = append(errs, "api.developer_id must be a UUID")
		}
	}

	if c.Inventory.Path == "" {
		errs = append(errs, "inventory.path is required")
	}
	if c.Inventory.BusyTimeout < 0 {
		errs = append(errs, "inventory.busy_timeout must not be negative")
	}

	if c.Metrics.Enabled {
		if c.Metrics.URL == "" {
			errs = append(errs, "metrics.url is required when metrics are enabled")
		}
		if c.Metrics.Token == "" {
			errs = append(errs, "metrics.token is required when metrics are enabled (set M2WEB_METRICS_TOKEN)")
		}
		if c.Metrics.Org == "" {
			errs = append(errs, "metrics.org is required when metrics are enabled")
		}
		if c.Metrics.Bucket == "" {
			errs = append(errs, "metrics.bucket is required when metrics are enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
