package forumsdk_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/forum/internal/forumtest"
	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	"github.com/aussiebroadwan/forum/pkg/slogx"
	"github.com/stretchr/testify/require"
)

// countingStore records writes to an in-memory session.
type countingStore struct {
	*forumsdk.MemoryStore
	saves  atomic.Int32
	clears atomic.Int32
}

func newCountingStore(s forumsdk.Session) *countingStore {
	return &countingStore{MemoryStore: forumsdk.NewMemoryStore(s)}
}

func (c *countingStore) Save(ctx context.Context, s forumsdk.Session) error {
	c.saves.Add(1)
	return c.MemoryStore.Save(ctx, s)
}

func (c *countingStore) Clear(ctx context.Context) error {
	c.clears.Add(1)
	return c.MemoryStore.Clear(ctx)
}

type hooks struct {
	mu        sync.Mutex
	notices   []forumsdk.Notice
	redirects atomic.Int32
}

func (h *hooks) Notify(_ context.Context, n forumsdk.Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notices = append(h.notices, n)
}

func (h *hooks) RedirectToLogin(context.Context) { h.redirects.Add(1) }

func (h *hooks) Notices() []forumsdk.Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]forumsdk.Notice(nil), h.notices...)
}

type fixture struct {
	srv    *forumtest.Server
	client *forumsdk.Client
	store  *countingStore
	hooks  *hooks
	userID int64
}

// newFixture starts a fake backend and logs a fresh user in.
func newFixture(t *testing.T, opts ...forumsdk.Option) *fixture {
	t.Helper()

	srv := forumtest.Start(t)
	f := &fixture{
		srv:    srv,
		store:  newCountingStore(forumsdk.Session{}),
		hooks:  &hooks{},
		userID: srv.AddUser("alice", "secret"),
	}

	opts = append([]forumsdk.Option{
		forumsdk.WithStore(f.store),
		forumsdk.WithNotifier(f.hooks),
		forumsdk.WithRedirector(f.hooks),
		forumsdk.WithLogger(slogx.Discard()),
	}, opts...)
	f.client = forumsdk.NewClient(srv.URL, opts...)

	_, err := f.client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	f.store.saves.Store(0)

	return f
}

// concurrently runs fn n times in parallel and returns each result.
func concurrently(n int, fn func(i int) error) (wait func() []error) {
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fn(i)
		}()
	}
	return func() []error {
		wg.Wait()
		return errs
	}
}
