package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moodtunes/mood-music-api/internal/metrics"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Exposition(t *testing.T) {
	m := metrics.New("test")
	m.ObserveRequest(http.MethodGet, "GET /health", http.StatusOK, 5*time.Millisecond)
	m.TokenAttempt("refresh_token", "success")
	m.SessionRefresh("failed")
	m.RateLimited("/callback")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	require.Contains(t, out, `http_requests_total{method="GET",route="GET /health",service="test",status="200"} 1`)
	require.Contains(t, out, `oauth_token_attempts_total{grant="refresh_token",outcome="success",service="test"} 1`)
	require.Contains(t, out, `session_refresh_total{outcome="failed",service="test"} 1`)
	require.Contains(t, out, `rate_limited_requests_total{route="/callback",service="test"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.TokenAttempt("authorization_code", "success")
	m.SessionRefresh("success")
	m.RateLimited("/")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
