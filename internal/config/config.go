// Package config holds the process settings of the wellnet binary: logging,
// the HTTP server, the design engine and the run store. Design parameters
// live in the project directory, not here.
package config

import (
	"fmt"
	"time"
)

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // debug | info | warn | error
	Format      string   `mapstructure:"format"` // json | console
	OutputPaths []string `mapstructure:"output_paths"`
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
}

// EngineConfig bounds the design worker pool.
type EngineConfig struct {
	// Workers is the number of triples designed concurrently; 0 uses
	// GOMAXPROCS.
	Workers       int           `mapstructure:"workers"`
	TripleTimeout time.Duration `mapstructure:"triple_timeout"`
}

// StoreConfig locates the sqlite run store. An empty path disables it.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// Config is the root configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
	Engine EngineConfig `mapstructure:"engine"`
	Store  StoreConfig  `mapstructure:"store"`
}

// Validate checks the fully populated configuration.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("config: server.max_body_size must be >= 0, got %d", c.Server.MaxBodySize)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("config: engine.workers must be >= 0, got %d", c.Engine.Workers)
	}
	if c.Engine.TripleTimeout < 0 {
		return fmt.Errorf("config: engine.triple_timeout must be >= 0, got %s", c.Engine.TripleTimeout)
	}
	return nil
}
