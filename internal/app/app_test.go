package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/forum/internal/forumtest"
	"github.com/aussiebroadwan/forum/internal/store"
	"github.com/aussiebroadwan/forum/internal/store/drivers/sqlite"
	"github.com/aussiebroadwan/forum/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		HTTPTimeout:   5 * time.Second,
		SessionDriver: "memory",
		RetryMax:      1,
		Env:           "test",
		LogLevel:      "error",
		LogFormat:     "text",
	}
}

func TestApplicationLoginAgainstBackend(t *testing.T) {
	t.Parallel()

	srv := forumtest.Start(t)
	srv.AddUser("alice", "secret")

	cfg := testConfig(srv.URL)
	cfg.MetricsFile = filepath.Join(t.TempDir(), "forum.prom")

	app, err := New(cfg, Hooks{LogOutput: io.Discard})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, app.Ping(ctx))

	_, err = app.Client().Login(ctx, "alice", "secret")
	require.NoError(t, err)

	srv.ExpireAccessTokens()
	_, err = app.Client().UnreadNotificationCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, srv.RefreshCalls())

	require.NoError(t, app.Close())

	dump, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	require.Contains(t, string(dump), `forum_client_refresh_total{outcome="success"} 1`)
}

func TestApplicationSealsSQLiteSession(t *testing.T) {
	t.Parallel()

	srv := forumtest.Start(t)
	srv.AddUser("alice", "secret")

	cfg := testConfig(srv.URL)
	cfg.SessionDriver = "sqlite"
	cfg.SessionFile = filepath.Join(t.TempDir(), "session.db")
	cfg.SessionKey = "correct horse battery staple"

	app, err := New(cfg, Hooks{LogOutput: io.Discard})
	require.NoError(t, err)

	ctx := context.Background()
	login, err := app.Client().Login(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NoError(t, app.Close())

	raw, err := sqlite.NewStore(cfg.SessionFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })

	values, err := raw.Get(ctx, store.KeyToken, store.KeyUsername)
	require.NoError(t, err)
	require.True(t, cryptox.IsSealed(values[store.KeyToken]))
	require.NotContains(t, values[store.KeyToken], login.Access())
	require.Equal(t, "alice", values[store.KeyUsername])

	reopened, err := New(cfg, Hooks{LogOutput: io.Discard})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	sess, err := reopened.Client().CurrentSession(ctx)
	require.NoError(t, err)
	require.Equal(t, login.Access(), sess.AccessToken)
}

func TestNewRejectsUnreachableRedis(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://localhost:1")
	cfg.SessionDriver = "redis"
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := New(cfg, Hooks{LogOutput: io.Discard})
	require.Error(t, err)
}
