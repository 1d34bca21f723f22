package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/noticeboard/pkg/metrics"
)

func TestCollector(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.AuthAttempt("local", metrics.OutcomeSuccess)
	c.AuthAttempt("local", metrics.OutcomeFailure)
	c.AuthAttempt("google", metrics.OutcomeSuccess)
	c.SessionEvent(metrics.SessionEstablished)
	c.RateLimited("login")

	count, err := testutil.GatherAndCount(reg, "noticeboard_auth_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = testutil.GatherAndCount(reg, "noticeboard_session_events_total", "noticeboard_rate_limited_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/posts/"+id, nil))
	}

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body),
		`noticeboard_http_requests_total{method="GET",route="/api/posts/{id}",status="404"} 2`)
}

func TestNop(t *testing.T) {
	t.Parallel()
	var r metrics.Recorder = metrics.Nop{}
	assert.NotPanics(t, func() {
		r.AuthAttempt("local", metrics.OutcomeError)
		r.SessionEvent(metrics.SessionDestroyed)
		r.RateLimited("register")
	})
}
