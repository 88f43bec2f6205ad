//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/forum/internal/store"
	"github.com/aussiebroadwan/forum/internal/store/drivers/redis"
	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a real redis and returns its address.
func setupRedisContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return host + ":" + mappedPort.Port()
}

func TestRedisSessionsAgainstServer(t *testing.T) {
	addr := setupRedisContainer(t)
	ctx := context.Background()

	kv := redis.NewStore(addr, "it")
	t.Cleanup(func() { _ = kv.Close() })
	require.NoError(t, kv.Ping(ctx))

	sessions := store.NewSessions(kv)
	want := forumsdk.Session{AccessToken: "A1", RefreshToken: "R1", UserID: 9, Username: "zed"}
	require.NoError(t, sessions.Save(ctx, want))

	// A second client sees the same session.
	other := store.NewSessions(redis.NewStore(addr, "it"))
	got, err := other.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.NoError(t, other.Clear(ctx))
	got, err = sessions.Load(ctx)
	require.NoError(t, err)
	require.True(t, got.IsZero())
	require.NoError(t, other.Close())
}
