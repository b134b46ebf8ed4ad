// Package config loads the service configuration of portgraph serve.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// StoreConfig selects and configures the graph store.
type StoreConfig struct {
	Kind      string        `yaml:"kind" json:"kind" validate:"oneof=memory file redis"`
	Dir       string        `yaml:"dir" json:"dir"`
	Format    string        `yaml:"format" json:"format" validate:"omitempty,oneof=json yaml"`
	RedisAddr string        `yaml:"redis_addr" json:"redis_addr" validate:"required_if=Kind redis"`
	Prefix    string        `yaml:"prefix" json:"prefix"`
	TTL       time.Duration `yaml:"ttl" json:"ttl" validate:"min=0"`

	// EncryptKeyEnv names the environment variable holding a base64 AES-256
	// key. When set, documents are encrypted at rest.
	EncryptKeyEnv string `yaml:"encrypt_key_env" json:"encrypt_key_env"`
	// Redact lists regular expressions of node state keys masked before saving.
	Redact []string `yaml:"redact" json:"redact"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=text json"`
}

// Config is the root of the service configuration file.
type Config struct {
	Listen  string      `yaml:"listen" json:"listen" validate:"required,hostname_port"`
	Store   StoreConfig `yaml:"store" json:"store"`
	Log     LogConfig   `yaml:"log" json:"log"`
	Metrics bool        `yaml:"metrics" json:"metrics"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen: "localhost:8080",
		Store: StoreConfig{
			Kind:   "memory",
			Dir:    ".portgraph/graphs",
			Format: "json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and reports every invalid field.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = fmt.Sprintf("%s: failed %q", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
