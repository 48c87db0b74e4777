// Package config loads the engine configuration from .canopy/config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"
)

// Config represents the complete canopy configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Naming  NamingConfig  `json:"naming" mapstructure:"naming"`
	Refresh RefreshConfig `json:"refresh" mapstructure:"refresh"`
	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// NamingConfig describes the branch naming rule warnings are checked against.
type NamingConfig struct {
	// Patterns are regexes a branch name must match at least one of.
	// Empty means the naming rule is inert.
	Patterns []string `json:"patterns" mapstructure:"patterns"`

	// ExemptDefault skips the default branch. Always treated as true
	// today; kept in the schema for forward compatibility.
	ExemptDefault bool `json:"exemptDefault" mapstructure:"exemptDefault"`
}

// RefreshConfig bounds the review-refresh prioritizer.
type RefreshConfig struct {
	MaxTotal int `json:"maxTotal" mapstructure:"maxTotal"`
	OtherMax int `json:"otherMax" mapstructure:"otherMax"`
}

// CacheConfig locates the review cache.
type CacheConfig struct {
	// Dir overrides the cache directory; empty means .canopy in the repo
	Dir string `json:"dir" mapstructure:"dir"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
	File  string `json:"file" mapstructure:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Naming: NamingConfig{
			Patterns:      []string{},
			ExemptDefault: true,
		},
		Refresh: RefreshConfig{
			MaxTotal: 10,
			OtherMax: 3,
		},
		Cache: CacheConfig{},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// CanopyDir returns the configuration/cache directory for a repo root.
func CanopyDir(repoRoot string) string {
	return filepath.Join(repoRoot, ".canopy")
}

// Load loads configuration from .canopy/config.json, falling back to
// defaults when the file does not exist.
func Load(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("naming.exemptDefault", true)
	v.SetDefault("refresh.maxTotal", 10)
	v.SetDefault("refresh.otherMax", 3)
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(CanopyDir(repoRoot))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to .canopy/config.json.
func (c *Config) Save(repoRoot string) error {
	dir := CanopyDir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	for _, p := range c.Naming.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid naming pattern %q: %w", p, err)
		}
	}
	if c.Refresh.MaxTotal < 0 {
		return fmt.Errorf("refresh.maxTotal must be >= 0, got %d", c.Refresh.MaxTotal)
	}
	if c.Refresh.OtherMax < 0 {
		return fmt.Errorf("refresh.otherMax must be >= 0, got %d", c.Refresh.OtherMax)
	}
	return nil
}
