// Package config handles configuration loading for strixer.
// It supports XDG config paths, project-level overrides, and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for strixer.
type Config struct {
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Log      LogConfig      `mapstructure:"log"`
}

// DefaultsConfig holds default values applied to new entities.
type DefaultsConfig struct {
	// Capacity is the concurrency limit for agents without a capacity record.
	Capacity int `mapstructure:"capacity"`
	// Priority is the priority applied when a task carries none.
	Priority string `mapstructure:"priority"`
}

// EngineConfig holds coordination engine toggles.
type EngineConfig struct {
	// StrictCycleCheck upgrades create-time cycle detection from the
	// direct back-edge test to full transitive detection.
	StrictCycleCheck bool `mapstructure:"strict_cycle_check"`
	// AutoAssign enables agent selection during workflow execution.
	AutoAssign bool `mapstructure:"auto_assign"`
}

// ArchiveConfig holds the terminal-result archive settings.
type ArchiveConfig struct {
	// Path is the SQLite archive file. Empty disables archival.
	Path string `mapstructure:"path"`
}

// LogConfig holds debug logging settings.
type LogConfig struct {
	// Path is the debug log file. Empty disables logging.
	Path string `mapstructure:"path"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (STRIXER_*)
// 2. Project config (.strixer.yaml in current directory or parent)
// 3. User config (~/.config/strixer/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("STRIXER")
	v.AutomaticEnv()
	v.BindEnv("defaults.capacity", "STRIXER_DEFAULT_CAPACITY")
	v.BindEnv("engine.strict_cycle_check", "STRIXER_STRICT_CYCLE_CHECK")
	v.BindEnv("engine.auto_assign", "STRIXER_AUTO_ASSIGN")
	v.BindEnv("archive.path", "STRIXER_ARCHIVE_PATH")
	v.BindEnv("log.path", "STRIXER_LOG_PATH")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("defaults.capacity", 5)
	v.SetDefault("defaults.priority", "medium")
	v.SetDefault("engine.strict_cycle_check", false)
	v.SetDefault("engine.auto_assign", false)
	v.SetDefault("archive.path", "")
	v.SetDefault("log.path", "")
}

// getUserConfigDir returns the XDG config directory for strixer.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "strixer")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "strixer")
	}
	return filepath.Join(home, ".config", "strixer")
}

// findProjectConfig searches for .strixer.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".strixer.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Capacity: 5,
			Priority: "medium",
		},
		Engine: EngineConfig{
			StrictCycleCheck: false,
			AutoAssign:       false,
		},
	}
}
