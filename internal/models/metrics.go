package models

import "time"

// WorkflowMetrics is a point-in-time summary of the workflow counters.
type WorkflowMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	StageSweeps              uint64    `json:"stage_sweeps"`
	StageSweepFailures       uint64    `json:"stage_sweep_failures"`
	StagesActivated          uint64    `json:"stages_activated"`
	StagesCompleted          uint64    `json:"stages_completed"`
	AutoAssignedStudents     uint64    `json:"auto_assigned_students"`
	AutoFilledRoles          uint64    `json:"auto_filled_roles"`
	LastSweepAt              time.Time `json:"last_sweep_at,omitempty"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
