package config

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a zap logger: JSON output in production, console
// output otherwise, at the configured level
func (c *Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if c.Server.IsProduction() {
		zc = zap.NewProductionConfig()
	}

	level := c.Logging.Level
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zc.Level = lvl

	return zc.Build()
}
