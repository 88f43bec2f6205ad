package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/forum/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var errDial = errors.New("dial tcp: connection refused")

func flaky(failures int32, calls *atomic.Int32) http.RoundTripper {
	return httpx.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		n := calls.Add(1)
		if n <= failures {
			return nil, errDial
		}
		rec := httptest.NewRecorder()
		rec.WriteHeader(http.StatusOK)
		return rec.Result(), nil
	})
}

func fastRetry(n uint64) httpx.RetryConfig {
	return httpx.RetryConfig{MaxRetries: n, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
}

func TestRetry(t *testing.T) {
	t.Parallel()

	t.Run("recovers idempotent request", func(t *testing.T) {
		var calls atomic.Int32
		rt := httpx.Chain(flaky(2, &calls), httpx.Retry(fastRetry(2)))

		req := httptest.NewRequest(http.MethodGet, "http://forum.test/posts", nil)
		resp, err := rt.RoundTrip(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.EqualValues(t, 3, calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		rt := httpx.Chain(flaky(10, &calls), httpx.Retry(fastRetry(2)))

		req := httptest.NewRequest(http.MethodGet, "http://forum.test/posts", nil)
		_, err := rt.RoundTrip(req)
		require.ErrorIs(t, err, errDial)
		require.EqualValues(t, 3, calls.Load())
	})

	t.Run("never retries POST", func(t *testing.T) {
		var calls atomic.Int32
		rt := httpx.Chain(flaky(1, &calls), httpx.Retry(fastRetry(2)))

		req := httptest.NewRequest(http.MethodPost, "http://forum.test/posts", strings.NewReader("{}"))
		_, err := rt.RoundTrip(req)
		require.ErrorIs(t, err, errDial)
		require.EqualValues(t, 1, calls.Load())
	})

	t.Run("disabled", func(t *testing.T) {
		var calls atomic.Int32
		rt := httpx.Chain(flaky(1, &calls), httpx.Retry(httpx.RetryConfig{}))

		req := httptest.NewRequest(http.MethodGet, "http://forum.test/posts", nil)
		_, err := rt.RoundTrip(req)
		require.ErrorIs(t, err, errDial)
		require.EqualValues(t, 1, calls.Load())
	})
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("disabled passes through", func(t *testing.T) {
		var calls atomic.Int32
		rt := httpx.Chain(flaky(0, &calls), httpx.RateLimit(httpx.RateLimitConfig{}, nil))

		for range 50 {
			req := httptest.NewRequest(http.MethodGet, "http://forum.test/posts", nil)
			_, err := rt.RoundTrip(req)
			require.NoError(t, err)
		}
		require.EqualValues(t, 50, calls.Load())
	})

	t.Run("waits honour context", func(t *testing.T) {
		var calls atomic.Int32
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Hour, Burst: 1}
		rt := httpx.Chain(flaky(0, &calls), httpx.RateLimit(cfg, nil))

		req := httptest.NewRequest(http.MethodGet, "http://forum.test/posts", nil)
		_, err := rt.RoundTrip(req)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		req = httptest.NewRequest(http.MethodGet, "http://forum.test/posts", nil).WithContext(ctx)
		_, err = rt.RoundTrip(req)
		require.Error(t, err)
		require.EqualValues(t, 1, calls.Load())
	})

	t.Run("buckets are per host", func(t *testing.T) {
		var calls atomic.Int32
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Hour, Burst: 1}
		rt := httpx.Chain(flaky(0, &calls), httpx.RateLimit(cfg, httpx.HostKeyExtractor))

		for _, host := range []string{"a.test", "b.test"} {
			req := httptest.NewRequest(http.MethodGet, "http://"+host+"/posts", nil)
			_, err := rt.RoundTrip(req)
			require.NoError(t, err)
		}
		require.EqualValues(t, 2, calls.Load())
	})
}

func TestParseRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TEST_REQUESTS", "30")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "10")
	t.Setenv("RATELIMIT_TEST_BURST", "bogus")

	cfg := httpx.ParseRateLimitFromEnv("TEST", httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 7})
	require.Equal(t, 30, cfg.RequestsPerWindow)
	require.Equal(t, 10*time.Second, cfg.Window)
	require.Equal(t, 7, cfg.Burst)
}

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return httpx.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(req)
			})
		}
	}

	var calls atomic.Int32
	rt := httpx.Chain(flaky(0, &calls), mark("outer"), nil, mark("inner"))

	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://forum.test/", nil))
	require.NoError(t, err)
	require.Equal(t, []string{"outer", "inner"}, order)
}
