// Package config loads the optional tunables that adjust protocol timing
// and logging without touching the wire format, which is fixed regardless
// of configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the values an operator may override from a YAML file. Load
// starts from Defaults, so a field the file omits keeps its default; a
// field the file sets, even to zero, replaces it.
type Config struct {
	// MaxWindowSize caps the sender's adaptive burst size. It has no
	// effect on the receiver, whose reassembly window is a fixed
	// rudp.MaxWindowSize slots regardless of configuration: changing it
	// there would desynchronize the flush-on-full-window behavior the
	// two sides depend on.
	MaxWindowSize    int    `yaml:"max_window_size"`
	DefaultTimeoutMs int    `yaml:"default_timeout_ms"`
	TeardownRetries  int    `yaml:"teardown_retries"`
	LogLevel         string `yaml:"log_level"`
	DNSServer        string `yaml:"dns_server"`
}

// Defaults returns a Config with every field set to the protocol's
// built-in defaults.
func Defaults() Config {
	return Config{
		MaxWindowSize:    24,
		DefaultTimeoutMs: 250,
		TeardownRetries:  10,
		LogLevel:         "info",
	}
}

// Load reads and parses a YAML config file, starting from Defaults and
// overlaying whatever fields the file sets.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Timeout returns DefaultTimeoutMs as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMs) * time.Millisecond
}
