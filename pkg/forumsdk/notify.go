package forumsdk

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/forum/pkg/slogx"
)

// NoticeKind classifies a user-visible notice raised by the gateway.
type NoticeKind string

const (
	NoticeRateLimited NoticeKind = "rate_limited"
)

// Notice is a transient, user-facing message. Front ends decide how to
// render it.
type Notice struct {
	Kind       NoticeKind
	Message    string
	RetryAfter time.Duration
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Redirector sends the user back to the login entry point once the
// session cannot be recovered.
type Redirector interface {
	RedirectToLogin(ctx context.Context)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// RedirectorFunc adapts a function to Redirector.
type RedirectorFunc func(ctx context.Context)

func (f RedirectorFunc) RedirectToLogin(ctx context.Context) { f(ctx) }

type logNotifier struct{ logger *slog.Logger }

func (l logNotifier) Notify(ctx context.Context, n Notice) {
	slogx.FromContext(ctx, l.logger).Warn("notice",
		"kind", string(n.Kind),
		"message", n.Message,
		"retry_after", n.RetryAfter.String(),
	)
}

type logRedirector struct{ logger *slog.Logger }

func (l logRedirector) RedirectToLogin(ctx context.Context) {
	slogx.FromContext(ctx, l.logger).Warn("session ended, login required")
}
