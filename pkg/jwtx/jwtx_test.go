package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/forum/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyInspect(t *testing.T) {
	t.Parallel()

	h := jwtx.HS256{Secret: []byte("test-secret")}
	now := time.Now()

	raw, err := h.Sign(jwtx.NewAccessClaims(42, "alice", 1, time.Minute, now))
	require.NoError(t, err)

	t.Run("verify", func(t *testing.T) {
		claims, err := h.Verify(raw)
		require.NoError(t, err)
		require.EqualValues(t, 42, claims.UserID)
		require.Equal(t, "alice", claims.Username)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := jwtx.HS256{Secret: []byte("other")}.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("inspect without secret", func(t *testing.T) {
		claims, err := jwtx.Inspect(raw)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Username)

		exp, err := jwtx.ExpiresAt(raw)
		require.NoError(t, err)
		require.WithinDuration(t, now.Add(time.Minute), exp, time.Second)
	})

	t.Run("inspect garbage", func(t *testing.T) {
		_, err := jwtx.Inspect("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	h := jwtx.HS256{Secret: []byte("test-secret")}
	raw, err := h.Sign(jwtx.NewAccessClaims(1, "bob", 1, time.Minute, time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	_, err = h.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	lenient := jwtx.HS256{Secret: []byte("test-secret"), Leeway: 2 * time.Hour}
	_, err = lenient.Verify(raw)
	require.NoError(t, err)
}

func TestExpiresWithin(t *testing.T) {
	t.Parallel()

	now := time.Now()
	c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Second))}}

	require.True(t, c.ExpiresWithin(time.Minute, now))
	require.False(t, c.ExpiresWithin(10*time.Second, now))

	var open jwtx.Claims
	require.False(t, open.ExpiresWithin(time.Hour, now))

	_, err := jwtx.ExpiresAt(mustSign(t, jwtx.Claims{UserID: 1}))
	require.ErrorIs(t, err, jwtx.ErrNoExpiry)
}

func TestRefreshClaimsAreDistinct(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := jwtx.NewRefreshClaims(1, 1, time.Hour, now)
	b := jwtx.NewRefreshClaims(1, 1, time.Hour, now)

	require.Equal(t, jwtx.TypeRefresh, a.Type)
	require.NotEqual(t, a.ID, b.ID)
}

func mustSign(t *testing.T, c jwtx.Claims) string {
	t.Helper()
	raw, err := jwtx.HS256{Secret: []byte("s")}.Sign(c)
	require.NoError(t, err)
	return raw
}
