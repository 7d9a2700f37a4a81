package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default values
const (
	DefaultHTTPTimeout = 5 * time.Minute
	DefaultMaxRetries  = 2
	DefaultUserAgent   = "brewfetch/1.0"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".brewfetch"
	}
	return filepath.Join(home, ".brewfetch")
}

// CacheRoot returns the default cache root directory
func CacheRoot() string {
	return filepath.Join(xdg.CacheHome, "brewfetch")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Root: CacheRoot(),
		},
		HTTP: HTTPConfig{
			Timeout:    DefaultHTTPTimeout,
			MaxRetries: DefaultMaxRetries,
			UserAgent:  DefaultUserAgent,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
