package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceNilIsNoop(t *testing.T) {
	var m *MetricsService

	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveCacheWrite(time.Millisecond)
		m.ObserveDBQuery("monthly_report", time.Millisecond)
		m.IncSessionsCreated()
		m.IncSessionTransfer("success")
		m.RegisterDBStats(nil, "counseling")
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsServiceCacheHitRatio(t *testing.T) {
	m := NewMetricsService()

	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	body := scrapeMetrics(t, m)
	assert.Contains(t, body, "counseling_report_cache_hit_ratio 0.6666666666666666")
	assert.Contains(t, body, `counseling_report_cache_lookups_total{result="hit"} 2`)
	assert.Contains(t, body, `counseling_report_cache_lookups_total{result="miss"} 1`)
}

func TestMetricsServiceExposesSessionCounters(t *testing.T) {
	m := NewMetricsService()
	m.IncSessionsCreated()
	m.IncSessionTransfer("conflict")
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/sessions", http.StatusCreated, 5*time.Millisecond)

	body := scrapeMetrics(t, m)
	assert.Contains(t, body, "counseling_sessions_created_total 1")
	assert.Contains(t, body, `counseling_session_transfers_total{outcome="conflict"} 1`)
	assert.Contains(t, body, `counseling_http_requests_total{method="POST",path="/api/v1/sessions",status="201"} 1`)
}

func scrapeMetrics(t *testing.T, m *MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
