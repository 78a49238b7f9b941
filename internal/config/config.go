// Package config loads qbg settings from defaults, an optional YAML file
// and QBG_* environment variables. Command-line flags are applied on
// top by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/querygraph/internal/vqg"
)

// Config is the resolved qbg configuration.
type Config struct {
	// Format is the CLI output format: "text" or "json".
	Format string `mapstructure:"format"`
	// Verbose enables debug logging on stderr.
	Verbose bool `mapstructure:"verbose"`
	// LogLevel is used when Verbose is off: debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`
	// DB is the translation log used by --record and replay.
	DB string `mapstructure:"db"`
	// LabelService and LabelServicePrefixes are the to-query defaults.
	LabelService         bool `mapstructure:"label_service"`
	LabelServicePrefixes bool `mapstructure:"label_service_prefixes"`
	// Source names a known data source used to fill empty prefixes.
	Source string `mapstructure:"source"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Format:   "text",
		LogLevel: "warn",
		DB:       "qbg.db",
	}
}

// Load resolves configuration. When path is empty, qbg.yaml is looked up
// in the working directory and the user config dir; a missing file is
// not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("format", def.Format)
	v.SetDefault("verbose", def.Verbose)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("db", def.DB)
	v.SetDefault("label_service", def.LabelService)
	v.SetDefault("label_service_prefixes", def.LabelServicePrefixes)
	v.SetDefault("source", def.Source)

	v.SetEnvPrefix("QBG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("qbg")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "qbg"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("config: format must be text or json, got %q", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Source != "" {
		if _, ok := vqg.KnownDataSources[c.Source]; !ok {
			return fmt.Errorf("config: unknown source %q (known: %s)", c.Source, strings.Join(vqg.DataSourceNames(), ", "))
		}
	}
	return nil
}

// Level returns the slog level for the configuration. Verbose wins over
// LogLevel.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
