// Package config holds runtime configuration for the Petrel CLI.
// Values are populated from .petrel.yaml, PETREL_* env vars, and CLI flags.
package config

import "github.com/spf13/viper"

// Config holds all runtime configuration for a petrel invocation.
type Config struct {
	// OnConflict selects how three-way conflicts are surfaced:
	// "side-file" or "markers".
	OnConflict string `mapstructure:"on_conflict"`

	// Workers bounds the rendering worker pool. Zero means one worker
	// per CPU.
	Workers int `mapstructure:"workers"`

	Verbose bool `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("on_conflict", "side-file")
	viper.SetDefault("workers", 0)
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
