// Package config provides configuration loading for outguard.
//
// Configuration is layered: defaults, then an optional YAML file, then
// OUTGUARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the complete outguard configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Secrets   SecretsConfig   `koanf:"secrets"`
	Scanner   ScannerConfig   `koanf:"scanner"`
	Incident  IncidentConfig  `koanf:"incident"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"http_host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`

	// AuthToken, when set, is required as a bearer token on /api/v1 routes.
	AuthToken Secret `koanf:"auth_token"`
}

// SecretsConfig locates the files known secrets are read from.
type SecretsConfig struct {
	EnvFile    string   `koanf:"env_file"`
	ConfigFile string   `koanf:"config_file"`
	ConfigKeys []string `koanf:"config_keys"`

	// Watch refreshes the known-secret set when a source file changes.
	Watch         bool     `koanf:"watch"`
	WatchDebounce Duration `koanf:"watch_debounce"`
}

// ScannerConfig holds detector options.
type ScannerConfig struct {
	// Gitleaks enables the extended gitleaks rule catalogue.
	Gitleaks      bool   `koanf:"gitleaks"`
	AllowlistFile string `koanf:"allowlist_file"`
}

// IncidentConfig holds incident log options.
type IncidentConfig struct {
	LogPath string `koanf:"log_path"`
}

// LoggingConfig holds diagnostic logging options.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry tracing and metrics options.
type TelemetryConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"`
	Insecure       bool     `koanf:"insecure"`
	ServiceName    string   `koanf:"service_name"`
	SampleRate     float64  `koanf:"sample_rate"`
	Metrics        bool     `koanf:"metrics"`
	ExportInterval Duration `koanf:"export_interval"`
}

// Default returns configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9190
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	home, _ := os.UserHomeDir()
	if cfg.Secrets.EnvFile == "" {
		cfg.Secrets.EnvFile = filepath.Join(home, ".openclaw", ".env")
	}
	if cfg.Secrets.ConfigFile == "" {
		cfg.Secrets.ConfigFile = filepath.Join(home, ".openclaw", "openclaw.json")
	}
	if cfg.Secrets.WatchDebounce == 0 {
		cfg.Secrets.WatchDebounce = Duration(250 * time.Millisecond)
	}

	if cfg.Incident.LogPath == "" {
		cfg.Incident.LogPath = DefaultIncidentLogPath()
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "outguard"
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = Duration(15 * time.Second)
	}
}

// DefaultIncidentLogPath returns action-log.md in the agent workspace:
// $CLAWD_WORKSPACE when set, otherwise ~/clawd.
func DefaultIncidentLogPath() string {
	if ws := os.Getenv("CLAWD_WORKSPACE"); ws != "" {
		return filepath.Join(ws, "action-log.md")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "clawd", "action-log.md")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Incident.LogPath == "" {
		return errors.New("incident log path is required")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http/protobuf" {
		return fmt.Errorf("telemetry protocol must be 'grpc' or 'http/protobuf', got %q", c.Telemetry.Protocol)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry sample_rate must be between 0 and 1, got %f", c.Telemetry.SampleRate)
	}
	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}
	return nil
}
