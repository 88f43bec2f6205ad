package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/aussiebroadwan/forum/internal/forumtest"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func forumctl(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

// backend starts a fake forum and points the CLI's environment at it with
// a session file private to the test.
func backend(t *testing.T) *forumtest.Server {
	t.Helper()
	srv := forumtest.Start(t)
	t.Setenv("FORUM_BASE_URL", srv.URL)
	t.Setenv("FORUM_SESSION_DRIVER", "sqlite")
	t.Setenv("FORUM_SESSION_FILE", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("FORUM_LOG_LEVEL", "error")
	return srv
}

func TestLoginPersistsSessionAcrossInvocations(t *testing.T) {
	srv := backend(t)
	srv.AddUser("alice", "secret")

	res := forumctl(t, "secret\n", "login", "alice")
	require.Zero(t, res.code, res.stderr)
	require.Contains(t, res.stdout, "logged in as alice")

	res = forumctl(t, "", "whoami", "-o", "json")
	require.Zero(t, res.code, res.stderr)
	var who whoami
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &who))
	require.Equal(t, "alice", who.Username)
	require.True(t, who.Authenticated)
	require.True(t, who.CanRenew)
	require.NotNil(t, who.ExpiresAt)

	res = forumctl(t, "", "logout")
	require.Zero(t, res.code, res.stderr)

	res = forumctl(t, "", "whoami")
	require.Zero(t, res.code, res.stderr)
	require.Contains(t, res.stdout, "not logged in")
}

func TestPostsRoundTrip(t *testing.T) {
	srv := backend(t)
	srv.AddUser("alice", "secret")
	require.Zero(t, forumctl(t, "", "login", "alice", "-p", "secret").code)

	res := forumctl(t, "", "posts", "create", "--title", "Hello", "--content", "body", "-o", "json")
	require.Zero(t, res.code, res.stderr)
	var created struct{ ID int64 }
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &created))
	require.NotZero(t, created.ID)

	res = forumctl(t, "", "posts", "list")
	require.Zero(t, res.code, res.stderr)
	require.Contains(t, res.stdout, "Hello")
	require.Contains(t, res.stdout, "alice")

	id := strconv.FormatInt(created.ID, 10)
	res = forumctl(t, "", "comments", "add", "article", id, "nice", "post")
	require.Zero(t, res.code, res.stderr)

	res = forumctl(t, "", "comments", "list", "article", id)
	require.Zero(t, res.code, res.stderr)
	require.Contains(t, res.stdout, "nice post")
}

func TestExpiredAccessTokenIsRenewedTransparently(t *testing.T) {
	srv := backend(t)
	srv.AddUser("alice", "secret")
	require.Zero(t, forumctl(t, "", "login", "alice", "-p", "secret").code)

	srv.ExpireAccessTokens()

	res := forumctl(t, "", "notifications", "count")
	require.Zero(t, res.code, res.stderr)
	require.Equal(t, "0\n", res.stdout)
	require.Equal(t, 1, srv.RefreshCalls())

	res = forumctl(t, "", "notifications", "count")
	require.Zero(t, res.code, res.stderr)
	require.Equal(t, 1, srv.RefreshCalls())
}

func TestRevokedSessionAsksForLogin(t *testing.T) {
	srv := backend(t)
	srv.AddUser("alice", "secret")
	require.Zero(t, forumctl(t, "", "login", "alice", "-p", "secret").code)

	srv.ExpireAccessTokens()
	srv.RevokeRefreshTokens()

	res := forumctl(t, "", "favorites")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "session expired: run `forumctl login`")

	res = forumctl(t, "", "whoami")
	require.Zero(t, res.code, res.stderr)
	require.Contains(t, res.stdout, "not logged in")
}

func TestRateLimitedRequestPrintsNotice(t *testing.T) {
	srv := backend(t)
	srv.AddUser("alice", "secret")
	require.Zero(t, forumctl(t, "", "login", "alice", "-p", "secret").code)

	srv.RateLimitNext(1)

	res := forumctl(t, "", "notifications", "list")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "rate limited:")
	require.Zero(t, srv.RefreshCalls())
}

func TestUploadImage(t *testing.T) {
	srv := backend(t)
	srv.AddUser("alice", "secret")
	require.Zero(t, forumctl(t, "", "login", "alice", "-p", "secret").code)

	file := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(file, []byte("\x89PNG"), 0o600))

	res := forumctl(t, "", "upload-image", file)
	require.Zero(t, res.code, res.stderr)
	require.True(t, strings.HasPrefix(res.stdout, srv.URL+"/static/"), res.stdout)
	require.Equal(t, "chart.png", srv.Uploads()[0].Filename)
}

func TestArgumentErrors(t *testing.T) {
	backend(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad id", []string{"posts", "show", "abc"}, `invalid id "abc"`},
		{"bad target", []string{"react", "video", "1"}, "unknown target"},
		{"bad output", []string{"whoami", "-o", "yaml"}, "unsupported output format"},
		{"empty edit", []string{"posts", "edit", "1"}, "nothing to change"},
		{"no password", []string{"login", "alice"}, "no input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := forumctl(t, "", tt.args...)
			require.Equal(t, 1, res.code)
			require.Contains(t, res.stderr, tt.want)
		})
	}
}
