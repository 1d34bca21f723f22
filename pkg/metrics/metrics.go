// Package metrics exposes Prometheus counters for authentication, sessions,
// throttling and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services report to. Nop satisfies it for tests and for
// deployments without a scrape endpoint.
type Recorder interface {
	AuthAttempt(provider, outcome string)
	SessionEvent(event string)
	RateLimited(route string)
}

// Auth outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// Session events.
const (
	SessionEstablished = "established"
	SessionRemembered  = "remembered"
	SessionDestroyed   = "destroyed"
)

type Collector struct {
	authAttempts *prometheus.CounterVec
	sessions     *prometheus.CounterVec
	rateLimited  *prometheus.CounterVec
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noticeboard_auth_attempts_total",
			Help: "Authentication attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noticeboard_session_events_total",
			Help: "Session lifecycle events.",
		}, []string{"event"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noticeboard_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"route"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noticeboard_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "noticeboard_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(c.authAttempts, c.sessions, c.rateLimited, c.requests, c.latency)
	return c
}

func (c *Collector) AuthAttempt(provider, outcome string) {
	c.authAttempts.WithLabelValues(provider, outcome).Inc()
}

func (c *Collector) SessionEvent(event string) {
	c.sessions.WithLabelValues(event).Inc()
}

func (c *Collector) RateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

// Middleware records count and latency per chi route pattern, so path
// parameters do not explode label cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry for Prometheus scrapes.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) AuthAttempt(string, string) {}
func (Nop) SessionEvent(string)        {}
func (Nop) RateLimited(string)         {}
