// Package forumtest runs an in-memory forum backend for tests. It speaks
// the same wire format as the real backend and exposes knobs to expire
// tokens, hold or fail refreshes and inject rate limiting.
package forumtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/forum/pkg/httpx"
	"github.com/aussiebroadwan/forum/pkg/idx"
	"github.com/aussiebroadwan/forum/pkg/jwtx"
	"github.com/gorilla/mux"
)

// Upload records a multipart request as the backend received it.
type Upload struct {
	Path        string
	ContentType string
	Field       string
	Filename    string
	Size        int64
}

// Option configures a Server.
type Option func(*Server)

// WithAccessTTL sets the lifetime of issued access tokens. Default 15m.
func WithAccessTTL(d time.Duration) Option { return func(s *Server) { s.accessTTL = d } }

// WithRefreshDelay makes every refresh call sleep for d before answering.
func WithRefreshDelay(d time.Duration) Option { return func(s *Server) { s.refreshDelay = d } }

// Server is the fake backend. All methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	signer       jwtx.HS256
	accessTTL    time.Duration
	refreshDelay time.Duration

	mu sync.Mutex
	db *db

	// accessGen versions every access token; bumping it makes all issued
	// access tokens fail with 401.
	accessGen     int
	refreshTokens map[string]int64 // jti -> user
	refreshCalls  int
	unauthorized  int
	refreshStatus int
	refreshGate   chan struct{}
	limitNext     int
	uploads       []Upload
	seenAuth      []string
}

// Start runs a Server until the test ends.
func Start(tb testing.TB, opts ...Option) *Server {
	tb.Helper()

	s := New(opts...)
	tb.Cleanup(s.Close)
	return s
}

// New starts a Server. The caller must Close it.
func New(opts ...Option) *Server {
	s := &Server{
		signer:        jwtx.HS256{Secret: []byte("forumtest-" + idx.New().String())},
		accessTTL:     15 * time.Minute,
		db:            newDB(),
		refreshTokens: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.PathPrefix("/static/").HandlerFunc(s.handleStatic).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.authenticate)

	api.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", s.handleCreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/comments", s.handleListComments).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}", s.handleGetPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}", s.handleUpdatePost).Methods(http.MethodPut)
	api.HandleFunc("/posts/{id:[0-9]+}", s.handleDeletePost).Methods(http.MethodDelete)
	api.HandleFunc("/draft", s.handleDrafts).Methods(http.MethodGet)

	api.HandleFunc("/comments", s.handlePostComment).Methods(http.MethodPost)
	api.HandleFunc("/comments/{id:[0-9]+}", s.handleDeleteComment).Methods(http.MethodDelete)
	api.HandleFunc("/comments/{id:[0-9]+}/replies", s.handleReplies).Methods(http.MethodGet)

	api.HandleFunc("/reactions", s.handleReaction).Methods(http.MethodPost)
	api.HandleFunc("/favorites", s.handleToggleFavorite).Methods(http.MethodPost)
	api.HandleFunc("/favorites", s.handleListFavorites).Methods(http.MethodGet)

	api.HandleFunc("/follow/{id:[0-9]+}", s.handleFollow).Methods(http.MethodPost)
	api.HandleFunc("/follow/{id:[0-9]+}", s.handleUnfollow).Methods(http.MethodDelete)
	api.HandleFunc("/users/followers/{id:[0-9]+}", s.handleFollowers).Methods(http.MethodGet)
	api.HandleFunc("/users/following/{id:[0-9]+}", s.handleFollowing).Methods(http.MethodGet)

	api.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read-all", s.handleReadAll).Methods(http.MethodPost)
	api.HandleFunc("/notifications/count", s.handleUnreadCount).Methods(http.MethodGet)

	api.HandleFunc("/user/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.handleUpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/change_pass", s.handleChangePassword).Methods(http.MethodPut)
	api.HandleFunc("/avatar", s.handleUploadAvatar).Methods(http.MethodPost)
	api.HandleFunc("/upload/article-image", s.handleUploadImage).Methods(http.MethodPost)

	return r
}

type ctxKeyUser struct{}

func userFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(ctxKeyUser{}).(int64)
	return id
}

// authenticate admits requests with a current access token. It also
// applies injected rate limiting.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		s.mu.Lock()
		s.seenAuth = append(s.seenAuth, header)
		if s.limitNext > 0 {
			s.limitNext--
			s.mu.Unlock()
			w.Header().Set("Retry-After", "1")
			httpx.WriteError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		gen := s.accessGen
		s.mu.Unlock()

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			s.reject(w, "missing token")
			return
		}
		claims, err := s.signer.Verify(raw)
		if err != nil || claims.Type != "" || claims.TokenVersion != gen {
			s.reject(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser{}, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) reject(w http.ResponseWriter, msg string) {
	s.mu.Lock()
	s.unauthorized++
	s.mu.Unlock()
	httpx.WriteError(w, http.StatusUnauthorized, msg)
}

// issue mints an access/refresh pair. Callers hold s.mu.
func (s *Server) issue(u *user) (access, refresh string, err error) {
	now := time.Now()

	ac := jwtx.NewAccessClaims(u.id, u.username, s.accessGen, s.accessTTL, now)
	ac.ID = idx.NewAt(now).String()
	if access, err = s.signer.Sign(ac); err != nil {
		return "", "", err
	}

	rc := jwtx.NewRefreshClaims(u.id, 0, 7*24*time.Hour, now)
	if refresh, err = s.signer.Sign(rc); err != nil {
		return "", "", err
	}
	s.refreshTokens[rc.ID] = u.id

	return access, refresh, nil
}

// RefreshCalls returns how many times /refresh was hit.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// Unauthorized returns how many 401s the authenticated routes answered.
func (s *Server) Unauthorized() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unauthorized
}

// ExpireAccessTokens invalidates every access token issued so far.
// Refresh tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessGen++
}

// RevokeRefreshTokens invalidates every outstanding refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.refreshTokens)
}

// FailRefresh makes /refresh answer with status. Zero restores normal
// behaviour.
func (s *Server) FailRefresh(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshStatus = status
}

// HoldRefresh blocks /refresh calls until the returned release is called.
func (s *Server) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.refreshGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.refreshGate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// RateLimitNext answers the next n authenticated requests with 429.
func (s *Server) RateLimitNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limitNext = n
}

// Uploads returns the multipart requests received so far.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// AuthHeaders returns the Authorization headers seen on authenticated
// routes, in arrival order.
func (s *Server) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seenAuth...)
}

// AddUser registers an account directly and returns its id.
func (s *Server) AddUser(username, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, _ := s.db.addUser(username, password)
	return u.id
}
