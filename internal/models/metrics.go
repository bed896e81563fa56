package models

import "time"

// SystemMetrics represents a snapshot of the service instrumentation.
type SystemMetrics struct {
	CacheHitRatio                float64   `json:"cache_hit_ratio"`
	CacheHits                    uint64    `json:"cache_hits"`
	CacheMisses                  uint64    `json:"cache_misses"`
	RequestsTotal                uint64    `json:"requests_total"`
	AverageRequestDurationMs     float64   `json:"average_request_duration_ms"`
	SourceFetchCount             uint64    `json:"source_fetch_count"`
	SourceFetchErrors            uint64    `json:"source_fetch_errors"`
	AverageSourceFetchDurationMs float64   `json:"average_source_fetch_duration_ms"`
	Goroutines                   int       `json:"goroutines"`
	GeneratedAt                  time.Time `json:"generated_at"`
}
