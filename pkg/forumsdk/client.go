package forumsdk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the forum REST API. Every call goes through a
// Gateway that attaches the stored session and renews it on 401.
type Client struct {
	BaseURL string

	gateway *Gateway
	store   Store
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient  *http.Client
	store       Store
	notifier    Notifier
	redirector  Redirector
	logger      *slog.Logger
	metrics     *Metrics
	renewBefore time.Duration
}

// WithHTTPClient sets the client requests are sent with. Its Transport is
// where logging, pacing and transport retries plug in.
func WithHTTPClient(hc *http.Client) Option { return func(o *options) { o.httpClient = hc } }

// WithStore sets where the session is persisted. Defaults to memory.
func WithStore(s Store) Option { return func(o *options) { o.store = s } }

func WithNotifier(n Notifier) Option { return func(o *options) { o.notifier = n } }

func WithRedirector(r Redirector) Option { return func(o *options) { o.redirector = r } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func WithMetrics(m *Metrics) Option { return func(o *options) { o.metrics = m } }

// WithRenewBefore enables renewal ahead of dispatch when the access
// token's exp claim is within d.
func WithRenewBefore(d time.Duration) Option { return func(o *options) { o.renewBefore = d } }

// NewClient creates a forum API client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	o := options{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = NewMemoryStore(Session{})
	}

	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		BaseURL: baseURL,
		store:   o.store,
		gateway: NewGateway(GatewayConfig{
			HTTPClient:  o.httpClient,
			Store:       o.store,
			RefreshURL:  baseURL + "/refresh",
			Notifier:    o.notifier,
			Redirector:  o.redirector,
			Logger:      o.logger,
			Metrics:     o.metrics,
			RenewBefore: o.renewBefore,
		}),
	}
}

// Gateway exposes the underlying gateway for requests the typed methods
// do not cover.
func (c *Client) Gateway() *Gateway { return c.gateway }

// CurrentSession returns the stored session.
func (c *Client) CurrentSession(ctx context.Context) (Session, error) {
	return c.store.Load(ctx)
}
