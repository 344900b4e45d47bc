// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds stepwise configuration settings
type Config struct {
	TickInterval  time.Duration `yaml:"tick_interval" env:"STEPWISE_TICK_INTERVAL" description:"Minimum time between script actions" default:"500ms"`
	FrameInterval time.Duration `yaml:"frame_interval" env:"STEPWISE_FRAME_INTERVAL" description:"Host loop period" default:"16ms"`
	Language      string        `yaml:"language" env:"STEPWISE_LANGUAGE" description:"Default script language (js, lua)" default:"js"`
	Level         string        `yaml:"level" env:"STEPWISE_LEVEL" description:"Level file (relative to data dir, empty = built-in)"`
	WatchScript   bool          `yaml:"watch_script" env:"STEPWISE_WATCH_SCRIPT" description:"Reload the script file when it changes" default:"false"`
	Debug         bool          `yaml:"debug" env:"STEPWISE_DEBUG" description:"Enable debug logging" default:"false"`
}

// DefaultConfig returns the default configuration for runtime use.
func DefaultConfig() Config {
	return Config{
		TickInterval:  500 * time.Millisecond,
		FrameInterval: 16 * time.Millisecond,
		Language:      "js",
	}
}

// GetDataDir returns the data directory.
// Resolution order: -d flag > STEPWISE_DATA env var > ~/.stepwise
func GetDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envDir := os.Getenv("STEPWISE_DATA"); envDir != "" {
		return envDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "" // Can't determine default
	}
	return filepath.Join(home, ".stepwise")
}

// GetConfigPath returns the path to the config file in the data directory.
// Returns empty string if dataDir is empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "config.yaml")
}

// LoadConfig loads config.yaml from the data directory, applies environment
// overrides and resolves the level path against the data directory.
func LoadConfig(dataDir string) (Config, error) {
	config, err := LoadConfigFromPath(GetConfigPath(dataDir))
	if err != nil {
		return config, err
	}
	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	config.Level = ResolvePath(config.Level, dataDir)
	return config, nil
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty or the file doesn't exist, returns default config.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay config file values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	defaults := DefaultConfig()
	if config.TickInterval == 0 {
		config.TickInterval = defaults.TickInterval
	}
	if config.FrameInterval == 0 {
		config.FrameInterval = defaults.FrameInterval
	}
	if config.Language == "" {
		config.Language = defaults.Language
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.TickInterval < 0 {
		return fmt.Errorf("invalid tick_interval %s (must not be negative)", c.TickInterval)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("invalid frame_interval %s (must be positive)", c.FrameInterval)
	}
	switch c.Language {
	case "js", "javascript", "lua":
	default:
		return fmt.Errorf("invalid language '%s' in config (must be js or lua)", c.Language)
	}
	return nil
}

// ResolvePath returns path unchanged when empty or absolute, otherwise
// joined onto base.
func ResolvePath(path, base string) string {
	if path == "" || filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}
