package port

import (
	"context"
	"time"
)

// PendingResetCache caches the per-user pending-reset flag consulted by the
// session guard on every authenticated request. A cache miss falls back to
// the user repository.
type PendingResetCache interface {
	Get(ctx context.Context, userID int64) (pending bool, found bool, err error)
	Set(ctx context.Context, userID int64, pending bool, ttl time.Duration) error
	Invalidate(ctx context.Context, userID int64) error
}
