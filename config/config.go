// Package config loads invoker-side configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"uffi/logging"
)

// Config holds all invoker configuration.
type Config struct {
	Invoker   InvokerConfig
	Logging   LogConfig
	Registry  RegistryConfig
	RateLimit RateLimitConfig
}

// InvokerConfig controls how calls are made.
type InvokerConfig struct {
	// EndpointDir is where rendezvous sockets are created; empty means os.TempDir.
	EndpointDir     string        `envconfig:"UFFI_ENDPOINT_DIR"`
	Codec           string        `envconfig:"UFFI_DEFAULT_CODEC" default:"json"`
	CallTimeout     time.Duration `envconfig:"UFFI_CALL_TIMEOUT" default:"0s"`
	ConnectTimeout  time.Duration `envconfig:"UFFI_CHILD_CONNECT_TIMEOUT" default:"0s"`
	FailOnChildExit bool          `envconfig:"UFFI_FAIL_ON_CHILD_EXIT" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"UFFI_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"UFFI_LOG_DEV" default:"false"`
}

// RegistryConfig selects the function registry. No endpoints means an
// in-memory registry.
type RegistryConfig struct {
	EtcdEndpoints []string      `envconfig:"UFFI_ETCD_ENDPOINTS"`
	EtcdPrefix    string        `envconfig:"UFFI_ETCD_PREFIX" default:"/uffi/functions"`
	DialTimeout   time.Duration `envconfig:"UFFI_ETCD_DIAL_TIMEOUT" default:"5s"`
}

// RateLimitConfig limits how fast calls may spawn children. A zero rate
// disables the limit.
type RateLimitConfig struct {
	CallsPerSecond float64 `envconfig:"UFFI_RATE_LIMIT" default:"0"`
	Burst          int     `envconfig:"UFFI_RATE_BURST" default:"1"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Invoker: InvokerConfig{
			Codec: "json",
		},
		Logging: LogConfig{
			Level: "info",
		},
		Registry: RegistryConfig{
			EtcdPrefix:  "/uffi/functions",
			DialTimeout: 5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Burst: 1,
		},
	}
}

// Logger builds the logger described by the Logging section.
func (c *Config) Logger() (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Development = c.Logging.Development
	return logging.New(cfg)
}
