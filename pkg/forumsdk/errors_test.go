package forumsdk

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{"error field", 400, `{"error":"title is required"}`, "title is required"},
		{"message field", 403, `{"message":"not allowed"}`, "not allowed"},
		{"msg field", 409, `{"msg":"duplicate"}`, "duplicate"},
		{"plain text", 502, "bad gateway upstream", "bad gateway upstream"},
		{"empty body", 500, "", "Internal Server Error"},
		{"unknown json", 404, `{"detail":"x"}`, "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.code, Header: http.Header{}}
			err := parseErrorResponse(resp, []byte(tt.body))
			require.Equal(t, tt.code, err.StatusCode)
			require.Equal(t, tt.want, err.Message)
			require.Equal(t, tt.body, string(err.Body))
		})
	}
}

func TestAPIErrorIs(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, &APIError{StatusCode: 429}, ErrRateLimited)
	require.ErrorIs(t, &APIError{StatusCode: 401}, ErrUnauthorized)
	require.NotErrorIs(t, &APIError{StatusCode: 403}, ErrUnauthorized)

	wrapped := errors.Join(errors.New("context"), &APIError{StatusCode: 401})
	require.ErrorIs(t, wrapped, ErrUnauthorized)
	require.Equal(t, 401, StatusCode(wrapped))
	require.Zero(t, StatusCode(errors.New("plain")))

	expired := &SessionExpiredError{Cause: &APIError{StatusCode: 401, Message: "x"}}
	require.ErrorIs(t, expired, ErrSessionExpired)
	require.NotErrorIs(t, expired, ErrUnauthorized)
	require.Contains(t, expired.Error(), "HTTP 401")
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	require.Zero(t, parseRetryAfter(""))
	require.Zero(t, parseRetryAfter("soon"))
	require.Equal(t, 30*time.Second, parseRetryAfter("30"))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	d := parseRetryAfter(future)
	require.Greater(t, d, 59*time.Minute)
}

func TestMissingBoundary(t *testing.T) {
	t.Parallel()

	require.True(t, missingBoundary("multipart/form-data"))
	require.True(t, missingBoundary("multipart/form-data; charset=utf-8"))
	require.False(t, missingBoundary("multipart/form-data; boundary=abc"))
	require.False(t, missingBoundary("application/json"))
	require.False(t, missingBoundary(";;;"))
}
