package forumsdk

import (
	"context"
	"sync"
)

// Session is the locally persisted login state.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
	Username     string
}

// Authenticated reports whether the session holds an access token.
func (s Session) Authenticated() bool { return s.AccessToken != "" }

// IsZero reports whether nothing is stored.
func (s Session) IsZero() bool { return s == Session{} }

// Store persists the Session between runs. Load returns the zero Session
// when nothing is stored. Implementations must be safe for concurrent use.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu sync.RWMutex
	s  Session
}

// NewMemoryStore returns a store seeded with s.
func NewMemoryStore(s Session) *MemoryStore {
	return &MemoryStore{s: s}
}

func (m *MemoryStore) Load(context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s, nil
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = Session{}
	return nil
}
