package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/logger"
)

// LoggingMailer writes reset emails to the log instead of delivering them.
// Used when no SMTP host is configured.
type LoggingMailer struct {
	logger *zap.Logger
}

var _ port.Mailer = (*LoggingMailer)(nil)

func NewLoggingMailer(log *zap.Logger) *LoggingMailer {
	return &LoggingMailer{logger: log}
}

func (m *LoggingMailer) SendPasswordReset(_ context.Context, msg port.PasswordResetEmail) error {
	m.logger.Info("reset email (logging mailer)",
		zap.String("to", logger.MaskEmail(msg.To)),
		zap.String("reset_url", msg.ResetURL),
		zap.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}
