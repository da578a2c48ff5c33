// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig points at the Responses API backend
type ServerConfig struct {
	BaseURL string        `yaml:"base_url"` // e.g. "http://localhost:8080/v1"
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultsConfig contains per-request defaults
type DefaultsConfig struct {
	Model           string `yaml:"model"`
	Renderer        string `yaml:"renderer"` // "rich", "json", "plain"
	Instructions    string `yaml:"instructions"`
	ReasoningEffort string `yaml:"reasoning_effort"` // "low", "medium", "high"
	EnableWebSearch bool   `yaml:"enable_web_search"`
}

// StorageConfig selects the conversation store backend
type StorageConfig struct {
	Backend string            `yaml:"backend"` // "file" (default), "sqlite", "postgres", "memory"
	Params  map[string]string `yaml:"params"`  // backend-specific: dir, path, dsn
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
	File   string `yaml:"file"`   // log file path; empty logs to stderr
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".openresponses-cli", "config.yaml")
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg
}

// applyEnvOverrides lets environment variables override file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENRESPONSES_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("OPENRESPONSES_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Server.APIKey == "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("OPENRESPONSES_MODEL"); v != "" {
		cfg.Defaults.Model = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080/v1"
	}
	if cfg.Server.Timeout == 0 {
		// Streaming turns can run long; this bounds a single request.
		cfg.Server.Timeout = 10 * time.Minute
	}
	if cfg.Defaults.Renderer == "" {
		cfg.Defaults.Renderer = "rich"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.Params == nil {
		cfg.Storage.Params = map[string]string{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
