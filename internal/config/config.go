// Package config loads and validates the themesync YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pptforge/themesync/internal/mode"
)

// Config holds the full application configuration loaded from YAML.
type Config struct {
	// StorePath is the SQLite file holding persisted theme selections.
	// Defaults to ~/.local/share/themesync/themes.db.
	StorePath string `yaml:"store_path"`

	// KeyPrefix namespaces every selection key. Changing it orphans
	// previously stored selections, so leave it at the default ("ai-ppt")
	// unless you know why you are changing it.
	KeyPrefix string `yaml:"key_prefix"`

	// SyncDebounce is the quiet period before a requested theme becomes
	// canonical. Minimum 10ms, maximum 2s. Defaults to 100ms.
	SyncDebounce time.Duration `yaml:"sync_debounce"`

	// StoreDebounce is the quiet period before a canonical theme is written
	// to the store. Minimum 10ms, maximum 10s. Defaults to 300ms.
	StoreDebounce time.Duration `yaml:"store_debounce"`

	// DefaultMode selects which mode the CLI operates on when --mode is not
	// given. Defaults to "single".
	DefaultMode string `yaml:"default_mode"`

	// Telemetry configures optional OpenTelemetry export via OTLP gRPC.
	// Omit the block entirely to disable telemetry.
	Telemetry *TelemetryConfig `yaml:"telemetry,omitempty"`
}

// TelemetryConfig holds optional OpenTelemetry settings.
type TelemetryConfig struct {
	// OTLPEndpoint is the gRPC host:port of the OTLP collector (e.g. "localhost:4317").
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// Insecure disables TLS for the collector connection. Use for local collectors.
	Insecure bool `yaml:"insecure"`

	// ServiceName overrides the OTel service.name attribute. Defaults to "themesync".
	ServiceName string `yaml:"service_name"`

	// Headers contains key-value pairs sent as gRPC metadata on every OTLP
	// request, e.g. Authorization: "Bearer <token>".
	Headers map[string]string `yaml:"headers,omitempty"`
}

// DefaultPath returns the default config file path: ~/.config/themesync/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "themesync", "config.yaml"), nil
}

// Load reads and validates the configuration file at the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file %q: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true) // reject unknown keys to catch typos early
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns a usable configuration for when no config file exists.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks that all fields are well-formed and fills in defaults.
func (c *Config) validate() error {
	if c.StorePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		c.StorePath = filepath.Join(home, ".local", "share", "themesync", "themes.db")
	}

	if c.KeyPrefix == "" {
		c.KeyPrefix = mode.DefaultPrefix
	}
	if strings.ContainsAny(c.KeyPrefix, " \t\n") {
		return fmt.Errorf("key_prefix %q must not contain whitespace", c.KeyPrefix)
	}

	if c.SyncDebounce == 0 {
		c.SyncDebounce = 100 * time.Millisecond
	}
	if c.SyncDebounce < 10*time.Millisecond || c.SyncDebounce > 2*time.Second {
		return fmt.Errorf("sync_debounce %v is out of range (10ms–2s)", c.SyncDebounce)
	}

	if c.StoreDebounce == 0 {
		c.StoreDebounce = 300 * time.Millisecond
	}
	if c.StoreDebounce < 10*time.Millisecond || c.StoreDebounce > 10*time.Second {
		return fmt.Errorf("store_debounce %v is out of range (10ms–10s)", c.StoreDebounce)
	}

	if c.DefaultMode == "" {
		c.DefaultMode = mode.Single.String()
	}
	if _, err := mode.Parse(c.DefaultMode); err != nil {
		return fmt.Errorf("default_mode: %w", err)
	}

	if c.Telemetry != nil {
		if c.Telemetry.OTLPEndpoint == "" {
			return fmt.Errorf("telemetry.otlp_endpoint is required when telemetry is configured")
		}
	}

	return nil
}
