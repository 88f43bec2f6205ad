package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.BaseURL)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "sqlite", cfg.SessionDriver)
	require.Equal(t, "forum-session.db", cfg.SessionFile)
	require.EqualValues(t, 2, cfg.RetryMax)
	require.Zero(t, cfg.RenewBefore)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("FORUM_BASE_URL", "https://forum.example.com")
	t.Setenv("FORUM_SESSION_DRIVER", "redis")
	t.Setenv("FORUM_REDIS_ADDR", "cache:6379")
	t.Setenv("FORUM_RENEW_BEFORE", "30s")
	t.Setenv("FORUM_RATE_LIMIT", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://forum.example.com", cfg.BaseURL)
	require.Equal(t, "redis", cfg.SessionDriver)
	require.Equal(t, "cache:6379", cfg.RedisAddr)
	require.Equal(t, 30*time.Second, cfg.RenewBefore)
	require.Equal(t, 4, cfg.RateLimit)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("FORUM_HTTP_TIMEOUT", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		BaseURL:       "http://localhost:8080",
		HTTPTimeout:   time.Second,
		SessionDriver: "memory",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.BaseURL = "/api" }},
		{"ftp url", func(c *Config) { c.BaseURL = "ftp://host" }},
		{"unknown driver", func(c *Config) { c.SessionDriver = "etcd" }},
		{"sqlite without file", func(c *Config) { c.SessionDriver = "sqlite"; c.SessionFile = "" }},
		{"redis without addr", func(c *Config) { c.SessionDriver = "redis"; c.RedisAddr = "" }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"negative renew", func(c *Config) { c.RenewBefore = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
