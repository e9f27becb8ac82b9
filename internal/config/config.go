// Package config loads settings from a config file and CLIPFORGE_*
// environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string `mapstructure:"database_url"`

	// HTTP server port for the controller
	HTTPPort int `mapstructure:"http_port"`

	// Dedicated port for the Prometheus /metrics endpoint
	MetricsPort int `mapstructure:"metrics_port"`

	// OTLP collector endpoint for traces
	OTELEndpoint string `mapstructure:"otel_endpoint"`

	// Log level: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	// Per-tenant API rate limit (requests/second; 0 = unlimited)
	APIRateLimit float64 `mapstructure:"api_rate_limit"`
	APIRateBurst int     `mapstructure:"api_rate_burst"`

	// Worker pool
	WorkerConcurrency    int           `mapstructure:"worker_concurrency"`
	WorkerPollInterval   time.Duration `mapstructure:"worker_poll_interval"`
	WorkerIdleBackoffMax time.Duration `mapstructure:"worker_idle_backoff_max"`
	WorkDir              string        `mapstructure:"work_dir"`

	// Retry policy
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	RetryDelayCap  time.Duration `mapstructure:"retry_delay_cap"`

	// Download pipeline
	DownloadTimeout  time.Duration `mapstructure:"download_timeout"`
	DownloadMaxBytes int64         `mapstructure:"download_max_bytes"`

	// Clip pipeline command, split on whitespace (e.g. "python3 clipper.py")
	ClipCommand string `mapstructure:"clip_command"`

	// Stuck-job reaper; ProcessingDeadline of 0 disables it
	ProcessingDeadline time.Duration `mapstructure:"processing_deadline"`
	ReapInterval       time.Duration `mapstructure:"reap_interval"`
}

// Load initializes viper and merges defaults, an optional config file and
// environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	// An empty default registers the key so AutomaticEnv can fill it.
	v.SetDefault("database_url", "")
	v.SetDefault("otel_endpoint", "localhost:4317")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_port", 6161)
	v.SetDefault("metrics_port", 6162)
	v.SetDefault("api_rate_limit", 10.0)
	v.SetDefault("api_rate_burst", 20)
	v.SetDefault("worker_concurrency", 2)
	v.SetDefault("worker_poll_interval", "1s")
	v.SetDefault("worker_idle_backoff_max", "4s")
	v.SetDefault("work_dir", "/tmp/clipforge")
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_base_delay", "10s")
	// Cap backoff at a small multiple of the download timeout so a stuck
	// dependency doesn't push retries into days.
	v.SetDefault("retry_delay_cap", "10m")
	v.SetDefault("download_timeout", "2m")
	v.SetDefault("download_max_bytes", int64(2<<30))
	v.SetDefault("clip_command", "clipforge-pipeline")
	v.SetDefault("processing_deadline", "30m")
	v.SetDefault("reap_interval", "1m")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("clipforge")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CLIPFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars may carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required (env: CLIPFORGE_DATABASE_URL)")
	}

	return &cfg, nil
}
