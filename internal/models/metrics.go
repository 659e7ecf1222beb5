package models

import "time"

// SystemMetrics is a lightweight snapshot of the dashboard's runtime counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	GatewayCalls             uint64    `json:"gateway_calls"`
	GatewayFailures          uint64    `json:"gateway_failures"`
	AverageGatewayDurationMs float64   `json:"average_gateway_duration_ms"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	ActiveScreens            int64     `json:"active_screens"`
	AuditWrites              uint64    `json:"audit_writes"`
	AuditFailures            uint64    `json:"audit_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
