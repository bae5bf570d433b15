// Package config loads the mwatdr tool configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level tool configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Verify VerifyConfig `yaml:"verify"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig locates and bounds the external reconstruction engine.
type EngineConfig struct {
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"` // 0 disables the limit
}

// VerifyConfig controls output verification after a run.
type VerifyConfig struct {
	Workers           int  `yaml:"workers"`
	AllowEmptySignals bool `yaml:"allow_empty_signals"`
}

type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{Binary: "mwatdr-engine", Timeout: 2 * time.Hour},
		Verify: VerifyConfig{Workers: 4},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Engine.Binary == "" {
		return errors.New("config: engine.binary must be set")
	}
	if c.Engine.Timeout < 0 {
		return errors.New("config: engine.timeout must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	return nil
}
