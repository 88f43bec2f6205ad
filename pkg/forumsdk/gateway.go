package forumsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/forum/pkg/jwtx"
	"github.com/aussiebroadwan/forum/pkg/slogx"
)

type noRenewalKey struct{}

// WithoutRenewal marks ctx so a 401 on the request is returned as is,
// without a refresh attempt or login redirect. Login and registration use
// it: there a 401 means wrong credentials, not an expired session.
func WithoutRenewal(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRenewalKey{}, true)
}

func renewalAllowed(ctx context.Context) bool {
	v, _ := ctx.Value(noRenewalKey{}).(bool)
	return !v
}

// GatewayConfig configures a Gateway. Store and RefreshURL are required.
type GatewayConfig struct {
	HTTPClient *http.Client
	Store      Store
	// RefreshURL is the absolute URL of the token refresh endpoint.
	RefreshURL string
	Notifier   Notifier
	Redirector Redirector
	Logger     *slog.Logger
	Metrics    *Metrics
	// RenewBefore renews the access token ahead of dispatch once its exp
	// claim is this close. Zero disables proactive renewal.
	RenewBefore time.Duration
}

// Gateway sends every forum API request. It attaches the stored bearer
// token and recovers from a 401 by renewing the session at most once per
// request. Concurrent 401s share a single refresh call: the first starts
// it, the rest queue and are released in arrival order with its outcome.
type Gateway struct {
	http        *http.Client
	store       Store
	refreshURL  string
	notifier    Notifier
	redirector  Redirector
	logger      *slog.Logger
	metrics     *Metrics
	renewBefore time.Duration

	mu         sync.Mutex
	refreshing bool
	pending    []chan renewal
}

// renewal is the outcome of a refresh cycle handed to each waiter.
type renewal struct {
	token string
	err   error
}

// NewGateway builds a Gateway, filling in defaults for unset collaborators.
func NewGateway(cfg GatewayConfig) *Gateway {
	g := &Gateway{
		http:        cfg.HTTPClient,
		store:       cfg.Store,
		refreshURL:  cfg.RefreshURL,
		notifier:    cfg.Notifier,
		redirector:  cfg.Redirector,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		renewBefore: cfg.RenewBefore,
	}
	if g.http == nil {
		g.http = &http.Client{Timeout: 10 * time.Second}
	}
	if g.store == nil {
		g.store = NewMemoryStore(Session{})
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.notifier == nil {
		g.notifier = logNotifier{logger: g.logger}
	}
	if g.redirector == nil {
		g.redirector = logRedirector{logger: g.logger}
	}
	return g
}

// Store returns the session store the gateway reads tokens from.
func (g *Gateway) Store() Store { return g.store }

// Do sends req with the current access token. A response with status
// below 400 is returned to the caller, who must close its body. Any other
// status comes back as an error: *APIError (matching ErrRateLimited or
// ErrUnauthorized where relevant) or ErrSessionExpired once renewal failed.
func (g *Gateway) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	sess, err := g.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	token := sess.AccessToken
	if renewalAllowed(ctx) && g.renewDue(sess) {
		slogx.FromContext(ctx, g.logger).Debug("access token near expiry, renewing")
		if token, err = g.renew(ctx, token, nil); err != nil {
			return nil, err
		}
	}

	return g.send(req, token, false)
}

func (g *Gateway) renewDue(sess Session) bool {
	if g.renewBefore <= 0 || sess.AccessToken == "" || sess.RefreshToken == "" {
		return false
	}
	claims, err := jwtx.Inspect(sess.AccessToken)
	if err != nil {
		// Opaque tokens are only renewed on 401.
		return false
	}
	return claims.ExpiresWithin(g.renewBefore, time.Now())
}

func (g *Gateway) send(req *http.Request, token string, retried bool) (*http.Response, error) {
	ctx := req.Context()

	resp, err := g.dispatch(req, token, retried)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr := readAPIError(resp)
		g.rateLimited(ctx, apiErr)
		return nil, apiErr

	case resp.StatusCode == http.StatusUnauthorized:
		apiErr := readAPIError(resp)
		if retried || !renewalAllowed(ctx) {
			return nil, apiErr
		}
		renewed, err := g.renew(ctx, token, apiErr)
		if err != nil {
			return nil, err
		}
		g.metrics.retried()
		return g.send(req, renewed, true)

	case resp.StatusCode >= http.StatusBadRequest:
		return nil, readAPIError(resp)
	}

	return resp, nil
}

// dispatch performs one round trip of a copy of req carrying token.
func (g *Gateway) dispatch(req *http.Request, token string, replay bool) (*http.Response, error) {
	out := req.Clone(req.Context())

	if req.Body != nil && req.Body != http.NoBody {
		switch {
		case req.GetBody != nil:
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewind request body: %w", err)
			}
			out.Body = body
		case replay:
			return nil, ErrBodyNotReplayable
		}
	}

	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	if ct := out.Header.Get("Content-Type"); ct != "" && missingBoundary(ct) {
		out.Header.Del("Content-Type")
	}

	start := time.Now()
	resp, err := g.http.Do(out)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	g.metrics.observe(out.Method, resp.StatusCode, time.Since(start))

	return resp, nil
}

// missingBoundary reports a multipart/form-data content type without a
// boundary parameter. Such a header would make the body unparseable.
func missingBoundary(contentType string) bool {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "multipart/form-data" && params["boundary"] == ""
}

// renew returns an access token to retry with. sent is the token the
// failed request carried and cause the error that triggered renewal.
func (g *Gateway) renew(ctx context.Context, sent string, cause error) (string, error) {
	logger := slogx.FromContext(ctx, g.logger)

	g.mu.Lock()
	if g.refreshing {
		wait := make(chan renewal, 1)
		g.pending = append(g.pending, wait)
		queued := len(g.pending)
		g.mu.Unlock()

		g.metrics.waited()
		logger.Debug("waiting on in-flight refresh", "queue_position", queued)
		return awaitRenewal(ctx, wait)
	}

	sess, err := g.store.Load(ctx)
	if err != nil {
		g.mu.Unlock()
		return "", fmt.Errorf("load session: %w", err)
	}

	// Another cycle already replaced the token this request was sent with.
	if sess.AccessToken != "" && sess.AccessToken != sent {
		g.mu.Unlock()
		logger.Debug("retrying with newer stored token")
		return sess.AccessToken, nil
	}

	if sess.RefreshToken == "" {
		g.mu.Unlock()
		logger.Info("no refresh token, ending session")
		g.endSession(ctx, logger)
		return "", &SessionExpiredError{Cause: cause}
	}

	g.refreshing = true
	wait := make(chan renewal, 1)
	g.pending = append(g.pending, wait)
	g.mu.Unlock()

	go g.runCycle(context.WithoutCancel(ctx), sess, logger)

	return awaitRenewal(ctx, wait)
}

func awaitRenewal(ctx context.Context, wait <-chan renewal) (string, error) {
	select {
	case r := <-wait:
		return r.token, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// runCycle performs the refresh call and releases every waiter with its
// outcome. It runs detached from the initiating request so a cancelled
// initiator does not strand the queue.
func (g *Gateway) runCycle(ctx context.Context, sess Session, logger *slog.Logger) {
	start := time.Now()
	logger.Info("refreshing session")

	pair, err := g.refresh(ctx, sess.RefreshToken)
	if err == nil {
		sess.AccessToken, sess.RefreshToken = pair.AccessToken, pair.RefreshToken
		if saveErr := g.store.Save(ctx, sess); saveErr != nil {
			err = fmt.Errorf("persist renewed session: %w", saveErr)
		}
	}

	if err != nil {
		logger.Warn("session refresh failed", "error", err, "took", time.Since(start))
		g.metrics.refresh("failure")
		if clearErr := g.store.Clear(ctx); clearErr != nil {
			logger.Error("failed to clear session", "error", clearErr)
		}
		g.release(renewal{err: &SessionExpiredError{Cause: err}})
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			g.rateLimited(ctx, apiErr)
		}
		g.redirector.RedirectToLogin(ctx)
		return
	}

	logger.Info("session refreshed", "took", time.Since(start))
	g.metrics.refresh("success")
	g.release(renewal{token: sess.AccessToken})
}

func (g *Gateway) rateLimited(ctx context.Context, apiErr *APIError) {
	g.metrics.limited()
	g.notifier.Notify(ctx, Notice{
		Kind:       NoticeRateLimited,
		Message:    "Too many requests, please slow down and try again later.",
		RetryAfter: apiErr.RetryAfter,
	})
}

// release returns the gateway to idle and hands r to the whole queue in
// enqueue order.
func (g *Gateway) release(r renewal) {
	g.mu.Lock()
	waiters := g.pending
	g.pending = nil
	g.refreshing = false
	g.mu.Unlock()

	for _, w := range waiters {
		w <- r
	}
}

func (g *Gateway) endSession(ctx context.Context, logger *slog.Logger) {
	if err := g.store.Clear(ctx); err != nil {
		logger.Error("failed to clear session", "error", err)
	}
	g.redirector.RedirectToLogin(ctx)
}

// TokenPair is the refresh endpoint's response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// refresh exchanges refreshToken for a new pair. It talks to the HTTP
// client directly: its own 401 must never re-enter renewal.
func (g *Gateway) refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	payload, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send refresh request: %w", err)
	}
	g.metrics.observe(req.Method, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readAPIError(resp)
	}
	defer resp.Body.Close()

	var pair TokenPair
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&pair); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, ErrIncompleteTokens
	}

	return &pair, nil
}
