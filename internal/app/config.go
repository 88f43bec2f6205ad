package app

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from FORUM_* environment variables.
type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" default:"http://localhost:8080"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	// SessionDriver selects where the session lives: sqlite, redis or memory.
	SessionDriver string `envconfig:"SESSION_DRIVER" default:"sqlite"`
	SessionFile   string `envconfig:"SESSION_FILE" default:"forum-session.db"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"forum"`
	// SessionKey seals stored tokens when set.
	SessionKey string `envconfig:"SESSION_KEY"`

	// RateLimit paces requests per second. Zero keeps the httpx client
	// profile (RATELIMIT_CLIENT_*).
	RateLimit int    `envconfig:"RATE_LIMIT" default:"0"`
	RateBurst int    `envconfig:"RATE_BURST" default:"5"`
	RetryMax  uint64 `envconfig:"RETRY_MAX" default:"2"`

	// RenewBefore renews the access token this long before its exp.
	RenewBefore time.Duration `envconfig:"RENEW_BEFORE" default:"0s"`

	// MetricsFile receives a Prometheus text dump on Close when set.
	MetricsFile string `envconfig:"METRICS_FILE"`

	Env       string `envconfig:"ENV" default:"dev"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("FORUM", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("FORUM_BASE_URL must be an http(s) URL, got %q", c.BaseURL)
	}

	switch c.SessionDriver {
	case "memory":
	case "sqlite":
		if c.SessionFile == "" {
			return fmt.Errorf("FORUM_SESSION_FILE is required for the sqlite driver")
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("FORUM_REDIS_ADDR is required for the redis driver")
		}
	default:
		return fmt.Errorf("unsupported FORUM_SESSION_DRIVER: %s", c.SessionDriver)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("FORUM_HTTP_TIMEOUT must be positive")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 || c.RenewBefore < 0 {
		return fmt.Errorf("rate limit, burst and renew-before must not be negative")
	}
	return nil
}
