package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/forum/internal/store"
	"github.com/aussiebroadwan/forum/internal/store/drivers/memory"
	"github.com/aussiebroadwan/forum/internal/store/drivers/redis"
	"github.com/aussiebroadwan/forum/internal/store/drivers/sqlite"
	"github.com/aussiebroadwan/forum/pkg/cryptox"
	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	"github.com/aussiebroadwan/forum/pkg/httpx"
	"github.com/aussiebroadwan/forum/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	sealContext = "session"
)

// Hooks are the user-facing collaborators a front end supplies.
type Hooks struct {
	Notifier   forumsdk.Notifier
	Redirector forumsdk.Redirector
	// LogOutput defaults to stderr.
	LogOutput io.Writer
}

// Application holds a ready forum client and what it was built from.
type Application struct {
	cfg     Config
	logger  *slog.Logger
	store   *store.Sessions
	client  *forumsdk.Client
	metrics *prometheus.Registry
}

// New wires logger, session store, transport chain, metrics and client.
func New(cfg Config, hooks Hooks) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "forumctl",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  hooks.LogOutput,
		}),
		metrics: prometheus.NewRegistry(),
	}

	kv, err := openKV(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.SessionKey != "" {
		sealer, err := cryptox.NewSealer(cfg.SessionKey, sealContext)
		if err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("failed to init session sealing: %w", err)
		}
		kv = store.NewSealed(kv, sealer)
	}
	app.store = store.NewSessions(kv)

	app.client = forumsdk.NewClient(cfg.BaseURL,
		forumsdk.WithHTTPClient(app.httpClient()),
		forumsdk.WithStore(app.store),
		forumsdk.WithNotifier(hooks.Notifier),
		forumsdk.WithRedirector(hooks.Redirector),
		forumsdk.WithLogger(app.logger),
		forumsdk.WithMetrics(forumsdk.NewMetrics(app.metrics)),
		forumsdk.WithRenewBefore(cfg.RenewBefore),
	)

	app.logger.Debug("application ready",
		"base_url", cfg.BaseURL,
		"session_driver", cfg.SessionDriver,
		"sealed", cfg.SessionKey != "",
	)
	return app, nil
}

func (app *Application) Client() *forumsdk.Client { return app.client }
func (app *Application) Logger() *slog.Logger { return app.logger }
func (app *Application) Config() Config { return app.cfg }
func (app *Application) Metrics() prometheus.Gatherer { return app.metrics }

// Ping checks the session store backend.
func (app *Application) Ping(ctx context.Context) error { return app.store.Ping(ctx) }

// Close flushes metrics to MetricsFile and closes the session store.
func (app *Application) Close() error {
	var errs []error
	if app.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(app.cfg.MetricsFile, app.metrics); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := app.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close session store: %w", err))
	}
	return errors.Join(errs...)
}

func openKV(cfg Config) (store.KV, error) {
	switch cfg.SessionDriver {
	case "memory":
		return memory.NewStore(), nil

	case "redis":
		kv := redis.NewStore(cfg.RedisAddr, cfg.RedisPrefix)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := kv.Ping(ctx); err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return kv, nil

	default:
		kv, err := sqlite.NewStore(cfg.SessionFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		if err := kv.ApplyMigrations(); err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("failed to apply session migrations: %w", err)
		}
		return kv, nil
	}
}

// httpClient builds the outbound chain: logging with a request id, then
// pacing, then transport retries, which log under that id.
func (app *Application) httpClient() *http.Client {
	limit := httpx.ClientLimit
	if app.cfg.RateLimit > 0 {
		limit = httpx.RateLimitConfig{
			RequestsPerWindow: app.cfg.RateLimit,
			Window:            time.Second,
			Burst:             app.cfg.RateBurst,
		}
	}

	retry := httpx.DefaultRetry
	retry.MaxRetries = app.cfg.RetryMax

	transport := httpx.Chain(http.DefaultTransport,
		func(next http.RoundTripper) http.RoundTripper { return slogx.NewTransport(next, app.logger) },
		httpx.RateLimit(limit, httpx.HostKeyExtractor),
		httpx.Retry(retry),
	)

	return &http.Client{
		Timeout:   app.cfg.HTTPTimeout,
		Transport: transport,
	}
}
