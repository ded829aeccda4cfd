package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 100*1024, cfg.Limits.MaxTemplateSize)
	assert.Equal(t, 5000, cfg.Limits.MaxNodes)
	assert.Equal(t, 50, cfg.Limits.MaxDepth)
	assert.Equal(t, 200, cfg.Limits.MaxIslands)
	assert.Equal(t, 0.7, cfg.Limits.WarnRatio)
	assert.Equal(t, 500*time.Millisecond, cfg.Limits.CompileBudget)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.NotEmpty(t, cfg.Cache.Version)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		errPart string
	}{
		{"zero template size", func(c *Config) { c.Limits.MaxTemplateSize = 0 }, "max_template_size"},
		{"negative nodes", func(c *Config) { c.Limits.MaxNodes = -1 }, "max_nodes"},
		{"zero depth", func(c *Config) { c.Limits.MaxDepth = 0 }, "max_depth"},
		{"warn ratio zero", func(c *Config) { c.Limits.WarnRatio = 0 }, "warn_ratio"},
		{"warn ratio one", func(c *Config) { c.Limits.WarnRatio = 1 }, "warn_ratio"},
		{"zero cache entries", func(c *Config) { c.Cache.MaxEntries = 0 }, "max_entries"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "ttl"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestValidateAcceptsEdgeValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.WarnRatio = 0.99
	cfg.Server.Port = 0 // ephemeral port
	assert.NoError(t, cfg.Validate())
}
