package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
)

// StubEventPublisher logs events instead of publishing them. Used when no
// Kafka brokers are configured, typically in local development.
type StubEventPublisher struct {
	logger *zap.Logger
}

var _ port.EventPublisher = (*StubEventPublisher)(nil)

func NewStubEventPublisher(logger *zap.Logger) *StubEventPublisher {
	return &StubEventPublisher{logger: logger}
}

func (s *StubEventPublisher) PublishAuditRecorded(_ context.Context, event domain.AuditRecordedEvent) error {
	s.logger.Debug("stub publisher: audit.recorded",
		zap.Int64("entry_id", event.EntryID),
		zap.String("action", event.Action),
	)
	return nil
}

func (s *StubEventPublisher) PublishPasswordResetDispatched(_ context.Context, event domain.PasswordResetDispatchedEvent) error {
	s.logger.Debug("stub publisher: password.reset_dispatched",
		zap.String("job_id", event.JobID),
		zap.Int64("user_id", event.UserID),
	)
	return nil
}

func (s *StubEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	s.logger.Debug("stub publisher: user.password.changed",
		zap.Int64("user_id", event.UserID),
	)
	return nil
}
