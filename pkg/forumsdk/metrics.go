package forumsdk

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments a Gateway. A nil *Metrics records nothing.
type Metrics struct {
	refreshes   *prometheus.CounterVec
	retries     prometheus.Counter
	rateLimited prometheus.Counter
	queued      prometheus.Counter
	duration    *prometheus.HistogramVec
}

// NewMetrics registers the gateway collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forum_client",
				Name:      "refresh_total",
				Help:      "Session refresh cycles by outcome.",
			},
			[]string{"outcome"},
		),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "forum_client",
			Name:      "retries_total",
			Help:      "Requests re-sent with a renewed access token.",
		}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "forum_client",
			Name:      "rate_limited_total",
			Help:      "Responses with status 429.",
		}),
		queued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "forum_client",
			Name:      "refresh_waiters_total",
			Help:      "Requests that waited on an in-flight refresh instead of starting one.",
		}),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "forum_client",
				Name:      "request_duration_seconds",
				Help:      "Round-trip time of forum API requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
	}
}

func (m *Metrics) refresh(outcome string) {
	if m != nil {
		m.refreshes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) retried() {
	if m != nil {
		m.retries.Inc()
	}
}

func (m *Metrics) limited() {
	if m != nil {
		m.rateLimited.Inc()
	}
}

func (m *Metrics) waited() {
	if m != nil {
		m.queued.Inc()
	}
}

func (m *Metrics) observe(method string, code int, d time.Duration) {
	if m != nil {
		m.duration.WithLabelValues(method, strconv.Itoa(code)).Observe(d.Seconds())
	}
}
