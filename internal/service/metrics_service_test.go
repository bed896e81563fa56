package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/dashboard/interactions", http.StatusOK, 4*time.Millisecond)
	metrics.ObserveSourceFetch("graphql", 10*time.Millisecond, nil)
	metrics.ObserveSourceFetch("graphql", 30*time.Millisecond, errors.New("timeout"))
	metrics.RecordCacheEvictions(3)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.RequestsTotal)
	assert.Equal(t, uint64(2), snapshot.SourceFetchCount)
	assert.Equal(t, uint64(1), snapshot.SourceFetchErrors)
	assert.InDelta(t, 20.0, snapshot.AverageSourceFetchDurationMs, 0.001)
	assert.Positive(t, snapshot.Goroutines)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `interaction_source_fetch_errors_total{source="graphql"} 1`)
	assert.Contains(t, body, "cache_evictions_total 3")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.ObserveSourceFetch("graphql", time.Millisecond, nil)
	metrics.RecordCacheEvictions(1)

	assert.Zero(t, metrics.Snapshot().RequestsTotal)
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
