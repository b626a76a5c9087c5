package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/posts/getposts", 200, 15*time.Millisecond)
	m.ObserveRequest("GET", "/api/posts/getposts", 200, 5*time.Millisecond)
	m.AuthRejected("expired")
	m.Upload("rejected")
	m.SessionsCleaned(3)
	m.SessionsCleaned(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/posts/getposts", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authRejections.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("rejected")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessionsCleaned))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.AuthRejected("invalid")
	m.Upload("stored")
	m.SessionsCleaned(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.AuthRejected("missing")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `auth_rejections_total{reason="missing"} 1`))
}
