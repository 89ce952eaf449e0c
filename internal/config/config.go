package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppName is used for the XDG config directory lookup
const AppName = "triangle-weaver"

const (
	DefaultSeedURL   = "https://quera.org/dashboard"
	DefaultUserAgent = "Mozilla/5.0 (TriangleCrawler Research Bot)"
)

var (
	ErrNoSeeds          = errors.New("at least one seed URL is required")
	ErrInvalidMaxPages  = errors.New("max_pages must be >= 0")
	ErrInvalidWorkers   = errors.New("concurrent_workers must be >= 1")
	ErrInvalidTimeout   = errors.New("request_timeout_ms must be >= 1")
	ErrMissingUserAgent = errors.New("user_agent must not be empty")
)

// Config holds all runtime configuration parameters
type Config struct {
	Seeds             []string          `json:"seeds" yaml:"seeds"`
	MaxPages          int               `json:"max_pages" yaml:"max_pages"`
	RequestTimeoutMs  int               `json:"request_timeout_ms" yaml:"request_timeout_ms"`
	UserAgent         string            `json:"user_agent" yaml:"user_agent"`
	Headers           map[string]string `json:"headers" yaml:"headers"`
	ConcurrentWorkers int               `json:"concurrent_workers" yaml:"concurrent_workers"`
	MetricsPath       string            `json:"metrics_path" yaml:"metrics_path"`
	HistoryDBPath     string            `json:"history_db_path" yaml:"history_db_path"`
	ReportFormat      string            `json:"report_format" yaml:"report_format"`
}

// Default returns a configuration populated with default values.
// Decoding a file on top of it keeps every key the file leaves out, so an
// explicit max_pages of 0 survives instead of being replaced.
func Default() *Config {
	return &Config{
		Seeds:             []string{DefaultSeedURL},
		MaxPages:          30,
		RequestTimeoutMs:  5000,
		UserAgent:         DefaultUserAgent,
		ConcurrentWorkers: 1,
		ReportFormat:      "text",
	}
}

// LoadConfig reads and validates configuration from a JSON or YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that required fields are present and values are sensible
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.ConcurrentWorkers < 1 {
		return ErrInvalidWorkers
	}
	if c.RequestTimeoutMs < 1 {
		return ErrInvalidTimeout
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return ErrMissingUserAgent
	}
	return nil
}

// RequestTimeout returns the per-fetch timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}
