package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Bottle   BottleConfig   `mapstructure:"bottle" yaml:"bottle"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Verbose  bool           `mapstructure:"verbose" yaml:"verbose"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	// Root is the directory under which all cache entries live.
	Root string `mapstructure:"root" yaml:"root"`
}

// HTTPConfig contains HTTP download settings
type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// BottleConfig contains pre-built-artifact download settings
type BottleConfig struct {
	// Mirror, when set, is appended as a mirror query parameter to bottle
	// download URLs.
	Mirror string `mapstructure:"mirror" yaml:"mirror"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration and applies fallbacks for
// out-of-range values.
func (c *Config) Validate() error {
	if c.Cache.Root == "" {
		return fmt.Errorf("cache.root must not be empty")
	}
	if c.HTTP.Timeout < time.Second {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}
	if c.HTTP.MaxRetries < 0 {
		c.HTTP.MaxRetries = DefaultMaxRetries
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = DefaultUserAgent
	}
	return nil
}
