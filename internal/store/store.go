package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aussiebroadwan/forum/pkg/forumsdk"
)

var ErrClosed = errors.New("store: closed")

// Keys the session is persisted under.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	KeyUsername     = "username"
)

var sessionKeys = []string{KeyToken, KeyRefreshToken, KeyUserID, KeyUsername}

// KV is the driver interface: a small string key-value namespace.
// Concrete drivers (memory, sqlite, redis) implement this.
type KV interface {
	// Get returns the values of the requested keys. Missing keys are
	// absent from the result; that is not an error.
	Get(ctx context.Context, keys ...string) (map[string]string, error)

	// Put writes all values atomically. An empty value deletes its key.
	Put(ctx context.Context, values map[string]string) error

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Sessions persists a forumsdk.Session in a KV.
type Sessions struct {
	kv KV
}

var _ forumsdk.Store = (*Sessions)(nil)

func NewSessions(kv KV) *Sessions {
	return &Sessions{kv: kv}
}

func (s *Sessions) Load(ctx context.Context) (forumsdk.Session, error) {
	values, err := s.kv.Get(ctx, sessionKeys...)
	if err != nil {
		return forumsdk.Session{}, fmt.Errorf("load session: %w", err)
	}

	sess := forumsdk.Session{
		AccessToken:  values[KeyToken],
		RefreshToken: values[KeyRefreshToken],
		Username:     values[KeyUsername],
	}
	if raw := values[KeyUserID]; raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return forumsdk.Session{}, fmt.Errorf("load session: bad %s %q: %w", KeyUserID, raw, err)
		}
		sess.UserID = id
	}

	return sess, nil
}

// Save replaces the whole stored session; empty fields are removed.
func (s *Sessions) Save(ctx context.Context, sess forumsdk.Session) error {
	values := map[string]string{
		KeyToken:        sess.AccessToken,
		KeyRefreshToken: sess.RefreshToken,
		KeyUserID:       "",
		KeyUsername:     sess.Username,
	}
	if sess.UserID != 0 {
		values[KeyUserID] = strconv.FormatInt(sess.UserID, 10)
	}

	if err := s.kv.Put(ctx, values); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Sessions) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, sessionKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping checks the underlying driver.
func (s *Sessions) Ping(ctx context.Context) error { return s.kv.Ping(ctx) }

// Close closes the underlying driver.
func (s *Sessions) Close() error { return s.kv.Close() }
