package domain

import "time"

// BulkPasswordResetJob is the unit of work dispatched by the reset endpoints
// and processed by a single background worker. PerformedByID is nil for
// self-service or system initiated resets. PerformedByName is denormalized at
// enqueue time so the worker does not re-resolve the acting admin.
type BulkPasswordResetJob struct {
	JobID           string    `json:"job_id"`
	PerformedByID   *int64    `json:"performed_by_id,omitempty"`
	PerformedByName *string   `json:"performed_by_name,omitempty"`
	UserIDs         []int64   `json:"user_ids"`
	EnqueuedAt      time.Time `json:"enqueued_at"`
}
