// Package config provides configuration management for the gmweb client.
package config

import (
	"time"
)

// Config is the top-level configuration structure, loaded from a YAML
// (or JSON) file and then overlaid with environment variables.
type Config struct {
	Environment string            `yaml:"environment" json:"environment"`
	Transport   TransportConfig   `yaml:"transport" json:"transport"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics" json:"metrics"`
	Health      HealthConfig      `yaml:"health" json:"health"`
	Persistence PersistenceConfig `yaml:"persistence" json:"persistence"`
}

// TransportConfig controls the HTTP layer: proxying and per-host timeouts
// for the unary request/response path versus the long-poll stream.
type TransportConfig struct {
	ProxyURL       string        `yaml:"proxy_url" json:"proxy_url"`
	DialTimeout    time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	StreamTimeout  time.Duration `yaml:"stream_timeout" json:"stream_timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`     // debug, info, warn, error
	Format   string `yaml:"format" json:"format"`   // json, text
	Output   string `yaml:"output" json:"output"`   // stdout, stderr, file path
	FilePath string `yaml:"file_path" json:"file_path"`
}

// MetricsConfig contains Prometheus metrics server configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// HealthConfig contains health check server configuration.
type HealthConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// PersistenceConfig selects and configures the AuthState store.
type PersistenceConfig struct {
	// Backend is "file" or "postgres".
	Backend     string `yaml:"backend" json:"backend"`
	FilePath    string `yaml:"file_path" json:"file_path"`
	PostgresDSN string `yaml:"postgres_dsn" json:"postgres_dsn"`
}
