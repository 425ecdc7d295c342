package models

import "time"

// DashboardCounts are the headline totals shown on the dashboard.
type DashboardCounts struct {
	Students int `json:"students"`
	Teachers int `json:"teachers"`
	Classes  int `json:"classes"`
	Subjects int `json:"subjects"`
}

// SystemMetrics is a snapshot of process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	SessionEvents            uint64    `json:"session_events"`
	ReportsFinished          uint64    `json:"reports_finished"`
	ReportsFailed            uint64    `json:"reports_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
