package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/forum/internal/store"
	"github.com/aussiebroadwan/forum/internal/store/drivers/memory"
	"github.com/aussiebroadwan/forum/internal/store/drivers/redis"
	"github.com/aussiebroadwan/forum/internal/store/drivers/sqlite"
	"github.com/aussiebroadwan/forum/pkg/cryptox"
	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type driver struct {
	name string
	open func(t *testing.T) store.KV
}

func drivers() []driver {
	return []driver{
		{"memory", func(t *testing.T) store.KV {
			return memory.NewStore()
		}},
		{"sqlite", func(t *testing.T) store.KV {
			s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "session.db"))
			require.NoError(t, err)
			require.NoError(t, s.ApplyMigrations())
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
		{"redis", func(t *testing.T) store.KV {
			mr := miniredis.RunT(t)
			s := redis.NewStore(mr.Addr(), "test")
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
	}
}

func TestKVContract(t *testing.T) {
	t.Parallel()

	for _, d := range drivers() {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			kv := d.open(t)

			require.NoError(t, kv.Ping(ctx))

			got, err := kv.Get(ctx, "a", "b")
			require.NoError(t, err)
			require.Empty(t, got)

			require.NoError(t, kv.Put(ctx, map[string]string{"a": "1", "b": "2"}))
			got, err = kv.Get(ctx, "a", "b", "c")
			require.NoError(t, err)
			require.Equal(t, map[string]string{"a": "1", "b": "2"}, got)

			require.NoError(t, kv.Put(ctx, map[string]string{"a": "10", "b": ""}))
			got, err = kv.Get(ctx, "a", "b")
			require.NoError(t, err)
			require.Equal(t, map[string]string{"a": "10"}, got)

			require.NoError(t, kv.Delete(ctx, "a", "missing"))
			got, err = kv.Get(ctx, "a")
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}

func TestSessionsRoundTrip(t *testing.T) {
	t.Parallel()

	for _, d := range drivers() {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			sessions := store.NewSessions(d.open(t))

			empty, err := sessions.Load(ctx)
			require.NoError(t, err)
			require.True(t, empty.IsZero())

			full := forumsdk.Session{AccessToken: "A1", RefreshToken: "R1", UserID: 42, Username: "alice"}
			require.NoError(t, sessions.Save(ctx, full))
			got, err := sessions.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, full, got)

			// Saving a session without tokens drops the old ones.
			identity := forumsdk.Session{UserID: 43, Username: "bob"}
			require.NoError(t, sessions.Save(ctx, identity))
			got, err = sessions.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, identity, got)

			require.NoError(t, sessions.Clear(ctx))
			got, err = sessions.Load(ctx)
			require.NoError(t, err)
			require.True(t, got.IsZero())
		})
	}
}

func TestSessionsRejectsCorruptUserID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := memory.NewStore()
	require.NoError(t, kv.Put(ctx, map[string]string{store.KeyUserID: "not-a-number"}))

	_, err := store.NewSessions(kv).Load(ctx)
	require.ErrorContains(t, err, "user_id")
}

func TestSealedKV(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sealer, err := cryptox.NewSealer("passphrase", "test")
	require.NoError(t, err)

	raw := memory.NewStore()
	sessions := store.NewSessions(store.NewSealed(raw, sealer))

	sess := forumsdk.Session{AccessToken: "A1", RefreshToken: "R1", UserID: 1, Username: "alice"}
	require.NoError(t, sessions.Save(ctx, sess))

	stored, err := raw.Get(ctx, store.KeyToken, store.KeyRefreshToken, store.KeyUsername)
	require.NoError(t, err)
	require.True(t, cryptox.IsSealed(stored[store.KeyToken]))
	require.True(t, cryptox.IsSealed(stored[store.KeyRefreshToken]))
	require.Equal(t, "alice", stored[store.KeyUsername], "only token keys are sealed")

	got, err := sessions.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, sess, got)

	t.Run("plaintext written before sealing", func(t *testing.T) {
		legacy := memory.NewStore()
		require.NoError(t, legacy.Put(ctx, map[string]string{store.KeyToken: "plain"}))

		got, err := store.NewSessions(store.NewSealed(legacy, sealer)).Load(ctx)
		require.NoError(t, err)
		require.Equal(t, "plain", got.AccessToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := cryptox.NewSealer("different", "test")
		require.NoError(t, err)

		_, err = store.NewSessions(store.NewSealed(raw, other)).Load(ctx)
		require.ErrorIs(t, err, cryptox.ErrOpen)
	})
}

func TestRedisFromClientSharesConnection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	kv := redis.FromClient(client, "")
	require.NoError(t, kv.Put(ctx, map[string]string{store.KeyToken: "A1"}))
	require.NoError(t, kv.Close())

	require.Equal(t, "A1", mr.HGet("forum:session", store.KeyToken))
	require.NoError(t, client.Ping(ctx).Err(), "caller-owned client stays open")
}

func TestClosedMemoryStore(t *testing.T) {
	t.Parallel()

	kv := memory.NewStore()
	require.NoError(t, kv.Close())
	_, err := kv.Get(context.Background(), "a")
	require.ErrorIs(t, err, store.ErrClosed)
}
