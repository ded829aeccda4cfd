package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/isleforge/isleforge/internal/compiler"
	"github.com/isleforge/isleforge/internal/config"
	"github.com/isleforge/isleforge/internal/logging"
	"github.com/isleforge/isleforge/internal/registry"
)

// buildCompiler assembles the compiler from configuration: builtin
// vocabulary, optional registry file, logger.
func buildCompiler() (*compiler.Compiler, *config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.NewLogger(&logging.Config{
		Level:  parseLogLevel(viper.GetString("log.level")),
		Format: "text",
		Output: os.Stderr,
	})

	reg := registry.NewBuiltinRegistry()
	if cfg.Registry.Path != "" {
		if err := registry.LoadInto(reg, cfg.Registry.Path); err != nil {
			return nil, nil, nil, fmt.Errorf("loading registry: %w", err)
		}
	}

	return compiler.New(cfg, reg, logger), cfg, logger, nil
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
