package port

import (
	"context"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
)

// EventPublisher emits domain events for downstream consumers. Publishing is
// best-effort; callers log and continue on failure.
type EventPublisher interface {
	PublishAuditRecorded(ctx context.Context, event domain.AuditRecordedEvent) error
	PublishPasswordResetDispatched(ctx context.Context, event domain.PasswordResetDispatchedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
}
