package port

import (
	"context"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
)

// ResetQueue accepts bulk reset jobs for asynchronous processing. Enqueue
// returns once the job is durably handed off; the triggering request never
// waits for processing.
type ResetQueue interface {
	Enqueue(ctx context.Context, job domain.BulkPasswordResetJob) error
}

// ResetJobHandler processes a dequeued bulk reset job.
type ResetJobHandler interface {
	ProcessBulkReset(ctx context.Context, job domain.BulkPasswordResetJob) error
}
