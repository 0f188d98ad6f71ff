// Package config loads CLI configuration from file, environment, and
// defaults.
//
// Precedence, highest first: environment variables (DISTREAD_ prefix),
// config file values, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the effective CLI configuration.
type Config struct {
	// S3 configures the object-store backend.
	S3 S3Config `mapstructure:"s3"`

	// Read configures the local execution cluster.
	Read ReadConfig `mapstructure:"read"`

	// Logging configures the CLI logger.
	Logging LoggingConfig `mapstructure:"logging"`
}

// S3Config mirrors the objstore s3 backend settings.
type S3Config struct {
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	Profile        string `mapstructure:"profile"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
	MaxKeys        int    `mapstructure:"max_keys"`
}

// ReadConfig configures the read fan-out executor.
type ReadConfig struct {
	// Workers is the number of parallel read tasks.
	Workers int `mapstructure:"workers"`

	// QueueDepth is the executor's submission queue size.
	QueueDepth int `mapstructure:"queue_depth"`

	// RateLimit caps task starts per second. Zero means unlimited.
	RateLimit float64 `mapstructure:"rate_limit"`
}

// LoggingConfig configures the CLI logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file path (optional) plus
// DISTREAD_* environment overrides, applying defaults for anything unset.
//
// With an empty path, a distread.yaml in the working directory is used if
// present; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.profile", "")
	v.SetDefault("s3.force_path_style", false)
	v.SetDefault("s3.max_keys", 0)
	v.SetDefault("read.workers", 4)
	v.SetDefault("read.queue_depth", 64)
	v.SetDefault("read.rate_limit", 0.0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetEnvPrefix("DISTREAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("distread")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks ranges the rest of the program assumes.
func (c *Config) Validate() error {
	if c.Read.Workers < 1 {
		return fmt.Errorf("config: read.workers must be >= 1, got %d", c.Read.Workers)
	}
	if c.Read.QueueDepth < 1 {
		return fmt.Errorf("config: read.queue_depth must be >= 1, got %d", c.Read.QueueDepth)
	}
	if c.Read.RateLimit < 0 {
		return fmt.Errorf("config: read.rate_limit must be >= 0, got %v", c.Read.RateLimit)
	}
	return nil
}
