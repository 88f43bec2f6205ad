package cryptox_test

import (
	"testing"

	"github.com/aussiebroadwan/forum/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	t.Parallel()

	s, err := cryptox.NewSealer("correct horse battery staple", "tokens")
	require.NoError(t, err)

	sealed, err := s.Seal("refresh-token-value")
	require.NoError(t, err)
	require.True(t, cryptox.IsSealed(sealed))
	require.NotContains(t, sealed, "refresh-token-value")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "refresh-token-value", opened)
}

func TestSealUsesFreshNonce(t *testing.T) {
	t.Parallel()

	s, err := cryptox.NewSealer("passphrase", "tokens")
	require.NoError(t, err)

	a, err := s.Seal("same")
	require.NoError(t, err)
	b, err := s.Seal("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestOpenFailures(t *testing.T) {
	t.Parallel()

	s, err := cryptox.NewSealer("passphrase", "tokens")
	require.NoError(t, err)
	sealed, err := s.Seal("secret")
	require.NoError(t, err)

	t.Run("wrong passphrase", func(t *testing.T) {
		other, err := cryptox.NewSealer("other", "tokens")
		require.NoError(t, err)
		_, err = other.Open(sealed)
		require.ErrorIs(t, err, cryptox.ErrOpen)
	})

	t.Run("different context", func(t *testing.T) {
		other, err := cryptox.NewSealer("passphrase", "profile")
		require.NoError(t, err)
		_, err = other.Open(sealed)
		require.ErrorIs(t, err, cryptox.ErrOpen)
	})

	t.Run("not sealed", func(t *testing.T) {
		_, err := s.Open("plain-token")
		require.ErrorIs(t, err, cryptox.ErrMalformed)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := s.Open("v1.AAAA")
		require.ErrorIs(t, err, cryptox.ErrMalformed)
	})
}

func TestEmptyPassphrase(t *testing.T) {
	t.Parallel()

	_, err := cryptox.NewSealer("", "tokens")
	require.ErrorIs(t, err, cryptox.ErrEmptyPassphrase)
}
