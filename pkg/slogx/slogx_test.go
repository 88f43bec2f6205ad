package slogx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/forum/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewWritesJSONToOutput(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := New(Config{Service: "forumctl", Version: "test", Env: "test", Level: "info", Output: &buf})
	logger.Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "hello", record["msg"])
	require.Equal(t, "forumctl", record["service"])
}

func TestFromContextFallback(t *testing.T) {
	t.Parallel()

	fallback := Discard()
	require.Same(t, fallback, FromContext(context.Background(), fallback))

	attached := Discard()
	ctx := WithContext(context.Background(), attached)
	require.Same(t, attached, FromContext(ctx, fallback))
}

func TestTransportStampsRequestID(t *testing.T) {
	t.Parallel()

	ids := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get(idx.Header)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := &http.Client{Transport: NewTransport(nil, logger)}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/posts", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	seen := <-ids
	_, err = idx.Parse(seen)
	require.NoError(t, err)
	require.Empty(t, req.Header.Get(idx.Header), "caller request must not be modified")
	require.Contains(t, buf.String(), seen)
	require.Contains(t, buf.String(), `"path":"/posts"`)
}
