// Package config provides configuration management for the isleforge
// compiler using Viper for flexible loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files and environment variable
// overrides with an ISLEFORGE_ prefix. It manages the compiler's structural
// limits, compilation cache sizing, component registry location, and the
// preview server settings.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Limits   LimitsConfig   `yaml:"limits"`
	Cache    CacheConfig    `yaml:"cache"`
	Registry RegistryConfig `yaml:"registry"`
	Server   ServerConfig   `yaml:"server"`
}

// LimitsConfig bounds worst-case CPU cost for untrusted input. These hard
// limits substitute for a cancellation mechanism: compilation is synchronous
// CPU work, so the only way to bound it is to bound its input.
type LimitsConfig struct {
	MaxTemplateSize   int `yaml:"max_template_size"`
	MaxNodes          int `yaml:"max_nodes"`
	MaxDepth          int `yaml:"max_depth"`
	MaxComponents     int `yaml:"max_components"`
	MaxIslands        int `yaml:"max_islands"`
	MaxComputedVars   int `yaml:"max_computed_vars"`
	MaxExpressionLen  int `yaml:"max_expression_len"`
	MaxLoopIterations int `yaml:"max_loop_iterations"`
	// WarnRatio is the fraction of a hard limit at which a soft warning is
	// emitted (0 < ratio < 1).
	WarnRatio float64 `yaml:"warn_ratio"`
	// CompileBudget is the wall-clock target; exceeding it warns, never fails.
	CompileBudget time.Duration `yaml:"compile_budget"`
}

type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
	// Version participates in cache keys so a compiler upgrade invalidates
	// every prior entry.
	Version string `yaml:"version"`
}

type RegistryConfig struct {
	// Path points at an optional YAML file of component registrations that
	// extends or overrides the builtin vocabulary.
	Path string `yaml:"path"`
	// Watch enables hot reload of the registry file.
	Watch bool `yaml:"watch"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxTemplateSize:   100 * 1024,
			MaxNodes:          5000,
			MaxDepth:          50,
			MaxComponents:     500,
			MaxIslands:        200,
			MaxComputedVars:   100,
			MaxExpressionLen:  500,
			MaxLoopIterations: 1000,
			WarnRatio:         0.7,
			CompileBudget:     500 * time.Millisecond,
		},
		Cache: CacheConfig{
			MaxEntries: 500,
			TTL:        10 * time.Minute,
			Version:    "v2",
		},
		Registry: RegistryConfig{},
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
	}
}

// Load reads configuration from viper (file + env + flags), applying
// defaults for anything unset.
func Load() (*Config, error) {
	config := DefaultConfig()

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the compiler cannot operate under.
func (c *Config) Validate() error {
	if c.Limits.MaxTemplateSize <= 0 {
		return fmt.Errorf("limits.max_template_size must be positive, got %d", c.Limits.MaxTemplateSize)
	}
	if c.Limits.MaxNodes <= 0 {
		return fmt.Errorf("limits.max_nodes must be positive, got %d", c.Limits.MaxNodes)
	}
	if c.Limits.MaxDepth <= 0 {
		return fmt.Errorf("limits.max_depth must be positive, got %d", c.Limits.MaxDepth)
	}
	if c.Limits.WarnRatio <= 0 || c.Limits.WarnRatio >= 1 {
		return fmt.Errorf("limits.warn_ratio must be in (0, 1), got %f", c.Limits.WarnRatio)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// SetDefaults registers viper defaults so partial config files work.
func SetDefaults() {
	d := DefaultConfig()
	viper.SetDefault("limits.max_template_size", d.Limits.MaxTemplateSize)
	viper.SetDefault("limits.max_nodes", d.Limits.MaxNodes)
	viper.SetDefault("limits.max_depth", d.Limits.MaxDepth)
	viper.SetDefault("limits.max_components", d.Limits.MaxComponents)
	viper.SetDefault("limits.max_islands", d.Limits.MaxIslands)
	viper.SetDefault("limits.max_computed_vars", d.Limits.MaxComputedVars)
	viper.SetDefault("limits.max_expression_len", d.Limits.MaxExpressionLen)
	viper.SetDefault("limits.max_loop_iterations", d.Limits.MaxLoopIterations)
	viper.SetDefault("limits.warn_ratio", d.Limits.WarnRatio)
	viper.SetDefault("limits.compile_budget", d.Limits.CompileBudget)
	viper.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	viper.SetDefault("cache.ttl", d.Cache.TTL)
	viper.SetDefault("cache.version", d.Cache.Version)
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.host", d.Server.Host)
}
