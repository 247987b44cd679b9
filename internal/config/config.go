// Package config loads the hostbridge configuration file.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/scrtlabs/hostbridge/types"
)

// Config is everything the CLI runs with.
type Config struct {
	// DataDir holds the badger state and the stored contract code
	DataDir string         `mapstructure:"data_dir"`
	VM      types.VMConfig `mapstructure:"vm"`
	Log     LogConfig      `mapstructure:"log"`
}

// LogConfig configures console and file logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File is the rotated log file, no file logging if empty
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

const (
	DefaultDataDir  = ".hostbridge"
	DefaultLogLevel = "info"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		VM:      types.DefaultVMConfig(),
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Load reads cfgFile over the defaults. The format follows the file
// extension (yaml, toml or json). Keys missing from the file keep their
// default values.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	if cfgFile == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed, path %s: %w", cfgFile, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed, path %s: %w", cfgFile, err)
	}
	if err := cfg.VM.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vm config in %s: %w", cfgFile, err)
	}
	return cfg, nil
}
