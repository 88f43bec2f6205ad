package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aussiebroadwan/forum/pkg/slogx"
	"github.com/cenkalti/backoff/v4"
)

// RetryConfig controls retries of idempotent requests that failed before a
// response arrived (connection refused, reset, DNS). HTTP statuses are
// never retried here; 401 and 429 belong to the request gateway.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// OnRetry is called before each retry. Optional.
	OnRetry func(req *http.Request, err error, wait time.Duration)
}

// DefaultRetry retries twice with short waits.
var DefaultRetry = RetryConfig{
	MaxRetries:      2,
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// Retry returns a Middleware applying config. Zero MaxRetries disables it.
func Retry(config RetryConfig) Middleware {
	if config.MaxRetries == 0 {
		return func(next http.RoundTripper) http.RoundTripper { return next }
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if !idempotent(req.Method) {
				return next.RoundTrip(req)
			}

			exp := backoff.NewExponentialBackOff()
			if config.InitialInterval > 0 {
				exp.InitialInterval = config.InitialInterval
			}
			if config.MaxInterval > 0 {
				exp.MaxInterval = config.MaxInterval
			}
			exp.Multiplier = 2
			policy := backoff.WithContext(backoff.WithMaxRetries(exp, config.MaxRetries), req.Context())

			attempt := 0
			var resp *http.Response
			op := func() error {
				attemptReq, err := rewind(req, attempt)
				if err != nil {
					return backoff.Permanent(err)
				}
				attempt++

				resp, err = next.RoundTrip(attemptReq)
				if err == nil {
					return nil
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return backoff.Permanent(err)
				}
				return err
			}

			notify := func(err error, wait time.Duration) {
				slogx.FromContext(req.Context()).Info("retrying request",
					"method", req.Method,
					"path", req.URL.Path,
					"attempt", attempt,
					"wait_ms", wait.Milliseconds(),
					"err", err,
				)
				if config.OnRetry != nil {
					config.OnRetry(req, err, wait)
				}
			}

			if err := backoff.RetryNotify(op, policy, notify); err != nil {
				return nil, err
			}
			return resp, nil
		})
	}
}

// rewind returns the request to send for the given attempt, with a fresh
// body on every attempt after the first.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("httpx: request body cannot be replayed")
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(body)
	return out, nil
}
