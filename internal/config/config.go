package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the global donegate configuration.
type Config struct {
	Audit   AuditConfig   `yaml:"audit"`
	Checks  ChecksConfig  `yaml:"checks"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// AuditConfig controls where gate decisions and check details are logged.
type AuditConfig struct {
	Path       string `yaml:"path" env:"DONEGATE_AUDIT_PATH"`
	DetailPath string `yaml:"detail_path" env:"DONEGATE_AUDIT_DETAIL_PATH"`
}

// ChecksConfig tunes the check library.
type ChecksConfig struct {
	HeartbeatTolerance float64 `yaml:"heartbeat_tolerance" env:"DONEGATE_HEARTBEAT_TOLERANCE"`
	// LogDetails writes per-check OK/ERROR records to the detail log.
	LogDetails bool `yaml:"log_details" env:"DONEGATE_LOG_DETAILS"`
}

// MetricsConfig controls Prometheus textfile export. Empty path disables it.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" env:"DONEGATE_METRICS_TEXTFILE"`
	Namespace    string `yaml:"namespace" env:"DONEGATE_METRICS_NAMESPACE"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dir := filepath.Join(home, ".local", "share", "donegate")
	return &Config{
		Audit: AuditConfig{
			Path:       filepath.Join(dir, "gate.log"),
			DetailPath: filepath.Join(dir, "checks.log"),
		},
		Checks: ChecksConfig{
			HeartbeatTolerance: 1.5,
			LogDetails:         true,
		},
		Metrics: MetricsConfig{
			Namespace: "donegate",
		},
	}
}

// Load reads the config from the standard location (~/.config/donegate/config.yaml).
// If the file doesn't exist, returns the default config with environment
// overrides applied.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config from the given path, then applies DONEGATE_*
// environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Audit.Path = expandHome(cfg.Audit.Path)
	cfg.Audit.DetailPath = expandHome(cfg.Audit.DetailPath)
	cfg.Metrics.TextfilePath = expandHome(cfg.Metrics.TextfilePath)

	if cfg.Checks.HeartbeatTolerance < 1 {
		return nil, fmt.Errorf("config: checks.heartbeat_tolerance must be at least 1, got %v", cfg.Checks.HeartbeatTolerance)
	}
	return cfg, nil
}

// ConfigPath returns the standard config file path.
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "donegate", "config.yaml")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, p[1:])
}
