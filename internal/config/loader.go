package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "WELLNET"

// keys lists every setting. Each is bound to its environment variable so
// that Unmarshal sees overrides the file does not mention.
var keys = []string{
	"log.level", "log.format", "log.output_paths",
	"server.port", "server.read_timeout", "server.write_timeout",
	"server.shutdown_timeout", "server.max_body_size",
	"engine.workers", "engine.triple_timeout",
	"store.path",
}

// newViper builds a Viper instance reading YAML, with WELLNET_ env
// overrides where "." maps to "_" (engine.workers -> WELLNET_ENGINE_WORKERS).
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at path, merges WELLNET_* overrides, applies
// defaults and validates. An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from WELLNET_* variables and defaults.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
