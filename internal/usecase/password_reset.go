package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/logger"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/security"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/telemetry"
	"github.com/nenecchuu/kaef-hris-sub002/internal/repository"
)

var (
	// ErrNoUserIDs is returned when a bulk reset request names no targets.
	ErrNoUserIDs = errors.New("no user ids provided")
	// ErrInvalidResetToken covers unknown, expired and already used tokens.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// PasswordResetService owns both halves of the reset workflow: the enqueue
// side called from HTTP handlers and the processing side called by the queue
// worker.
type PasswordResetService struct {
	users  port.UserRepository
	tokens port.TokenRepository
	mailer port.Mailer
	queue  port.ResetQueue
	events port.EventPublisher
	cache  port.PendingResetCache
	audit  *AuditService

	metrics *telemetry.Provider
	logger  *zap.Logger

	baseURL    string
	tokenTTL   time.Duration
	pendingTTL time.Duration

	now      func() time.Time
	newToken func() (string, error)
}

var _ port.ResetJobHandler = (*PasswordResetService)(nil)

func NewPasswordResetService(
	users port.UserRepository,
	tokens port.TokenRepository,
	mailer port.Mailer,
	events port.EventPublisher,
	cache port.PendingResetCache,
	audit *AuditService,
	metrics *telemetry.Provider,
	logger *zap.Logger,
	baseURL string,
	tokenTTL time.Duration,
	pendingTTL time.Duration,
) *PasswordResetService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if pendingTTL <= 0 {
		pendingTTL = 30 * time.Second
	}
	return &PasswordResetService{
		users:      users,
		tokens:     tokens,
		mailer:     mailer,
		events:     events,
		cache:      cache,
		audit:      audit,
		metrics:    metrics,
		logger:     logger,
		baseURL:    baseURL,
		tokenTTL:   tokenTTL,
		pendingTTL: pendingTTL,
		now:        time.Now,
		newToken:   func() (string, error) { return security.GenerateSecureToken(32) },
	}
}

// SetQueue attaches the job queue. Wired after construction because the
// in-process queue needs the service as its handler.
func (s *PasswordResetService) SetQueue(queue port.ResetQueue) {
	s.queue = queue
}

// WithClock overrides the time source. Test hook.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	s.now = now
	return s
}

// WithTokenGenerator overrides raw token generation. Test hook.
func (s *PasswordResetService) WithTokenGenerator(gen func() (string, error)) *PasswordResetService {
	s.newToken = gen
	return s
}

// EnqueueBulkReset accepts a bulk reset request and hands it to the queue.
// The caller gets a job id back immediately; all per-user work happens on the
// worker.
func (s *PasswordResetService) EnqueueBulkReset(ctx context.Context, performedBy *domain.User, userIDs []int64) (string, error) {
	if len(userIDs) == 0 {
		return "", ErrNoUserIDs
	}

	job := domain.BulkPasswordResetJob{
		JobID:      uuid.NewString(),
		UserIDs:    userIDs,
		EnqueuedAt: s.now(),
	}
	if performedBy != nil {
		id := performedBy.ID
		name := performedBy.Name
		job.PerformedByID = &id
		job.PerformedByName = &name
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		return "", fmt.Errorf("enqueue bulk reset job: %w", err)
	}

	s.metrics.ResetJobsEnqueued.Inc()
	s.logger.Info("bulk reset job enqueued",
		zap.String("job_id", job.JobID),
		zap.Int("user_count", len(userIDs)),
	)

	return job.JobID, nil
}

// ProcessBulkReset runs one dequeued job. Unknown user ids are skipped
// without error and a failed lookup or email for one user never blocks the
// others. The
// pending flags are set in a single batched update after the per-user loop;
// only that update failing fails the whole job.
func (s *PasswordResetService) ProcessBulkReset(ctx context.Context, job domain.BulkPasswordResetJob) error {
	started := s.now()

	for _, userID := range job.UserIDs {
		user, err := s.users.GetByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("skipping unknown user in bulk reset",
				zap.String("job_id", job.JobID),
				zap.Int64("user_id", userID),
			)
			continue
		}
		if err != nil {
			s.metrics.ResetEmailsSent.WithLabelValues("error").Inc()
			s.logger.Error("user lookup failed, continuing with remaining users",
				zap.String("job_id", job.JobID),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			continue
		}

		if err := s.dispatchReset(ctx, job, user); err != nil {
			s.metrics.ResetEmailsSent.WithLabelValues("error").Inc()
			s.logger.Error("reset dispatch failed, continuing with remaining users",
				zap.String("job_id", job.JobID),
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}

		s.metrics.ResetEmailsSent.WithLabelValues("sent").Inc()
	}

	// The original request list goes into one set-based update. Ids that
	// matched no row above match no row here either, so they stay no-ops.
	if err := s.users.MarkResetPasswordPending(ctx, job.UserIDs); err != nil {
		s.metrics.ResetJobsProcessed.WithLabelValues("error").Inc()
		return fmt.Errorf("mark reset password pending: %w", err)
	}

	for _, userID := range job.UserIDs {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.logger.Warn("pending flag cache invalidation failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	s.metrics.ResetJobsProcessed.WithLabelValues("ok").Inc()
	s.metrics.ResetJobDuration.Observe(s.now().Sub(started).Seconds())

	s.logger.Info("bulk reset job completed",
		zap.String("job_id", job.JobID),
		zap.Int("user_count", len(job.UserIDs)),
	)

	return nil
}

// dispatchReset issues a token, emails the user and records the audit entry
// for one bulk reset target.
func (s *PasswordResetService) dispatchReset(ctx context.Context, job domain.BulkPasswordResetJob, user *domain.User) error {
	token, expiresAt, err := s.issueToken(ctx, user)
	if err != nil {
		return err
	}

	msg := port.PasswordResetEmail{
		To:        user.Email,
		Name:      user.Name,
		ResetURL:  s.resetURL(token, user.Email),
		ExpiresAt: expiresAt,
	}
	if err := s.mailer.SendPasswordReset(ctx, msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	entry := &domain.AuditEntry{
		PerformedByID:   job.PerformedByID,
		PerformedByName: job.PerformedByName,
	}
	if job.PerformedByID != nil {
		entry.Action = domain.AuditActionResetPassword
		entry.Description = domain.AdminResetDescription(*job.PerformedByID, user.ID)
	} else {
		entry.Action = domain.AuditActionSelfResetPassword
		entry.Description = domain.SelfResetDescription(user.Email)
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("record reset audit entry: %w", err)
	}

	event := domain.PasswordResetDispatchedEvent{
		EventID:       uuid.NewString(),
		JobID:         job.JobID,
		UserID:        user.ID,
		Email:         user.Email,
		PerformedByID: job.PerformedByID,
		RequestedAt:   job.EnqueuedAt,
		ExpiresAt:     expiresAt,
	}
	if err := s.events.PublishPasswordResetDispatched(ctx, event); err != nil {
		s.logger.Warn("reset dispatched event publish failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	return nil
}

// RequestSelfReset handles the anonymous reset request form. Unknown emails
// succeed silently so the endpoint cannot be used to probe for accounts. A
// known email becomes a single-target job with no performer, processed by the
// same worker as admin-initiated bulk resets.
func (s *PasswordResetService) RequestSelfReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Info("self reset requested for unknown email",
			zap.String("email", logger.MaskEmail(email)),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user by email: %w", err)
	}

	job := domain.BulkPasswordResetJob{
		JobID:      uuid.NewString(),
		UserIDs:    []int64{user.ID},
		EnqueuedAt: s.now(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue self reset job: %w", err)
	}

	s.metrics.ResetJobsEnqueued.Inc()
	s.logger.Info("self reset job enqueued",
		zap.String("job_id", job.JobID),
		zap.String("email", logger.MaskEmail(email)),
	)

	return nil
}

// ConfirmReset exchanges a valid token and a policy-compliant new password
// for a completed reset: password updated, token consumed, pending flag
// cleared.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, rawToken, newPassword string) error {
	token, err := s.tokens.GetPasswordResetByHash(ctx, security.HashToken(rawToken))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("load reset token: %w", err)
	}

	if token.UsedAt != nil || s.now().After(token.ExpiresAt) {
		return ErrInvalidResetToken
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if err := security.ValidatePassword(newPassword, user.Email, user.Name); err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	// Consuming first closes the race between two confirms with the same
	// token; the loser gets ErrInvalidResetToken.
	if err := s.tokens.ConsumePasswordReset(ctx, token.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	changedAt := s.now()
	if err := s.users.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.users.ClearResetPasswordPending(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("clear pending flag: %w", err)
	}
	if err := s.cache.Invalidate(ctx, user.ID); err != nil {
		s.logger.Warn("pending flag cache invalidation failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	entry := &domain.AuditEntry{
		PerformedByID:   &user.ID,
		PerformedByName: &user.Name,
		Action:          domain.AuditActionChangePassword,
		Description:     domain.PasswordChangedDescription(user.ID),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("record password change audit entry: %w", err)
	}

	event := domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    user.ID,
		ChangedAt: changedAt,
	}
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.logger.Warn("password changed event publish failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("password reset completed",
		zap.Int64("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return nil
}

// IsResetPending reports whether the user must complete a password reset
// before continuing, preferring the cache over the users table.
func (s *PasswordResetService) IsResetPending(ctx context.Context, userID int64) (bool, error) {
	pending, found, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("pending flag cache read failed, falling back to database",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	} else if found {
		return pending, nil
	}

	pending, err = s.users.IsResetPasswordPending(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		// Unknown user: the auth middleware already vouched for the token,
		// treat the account as gone rather than pending.
		return false, err
	}
	if err != nil {
		return false, fmt.Errorf("read pending flag: %w", err)
	}

	if cacheErr := s.cache.Set(ctx, userID, pending, s.pendingTTL); cacheErr != nil {
		s.logger.Warn("pending flag cache write failed",
			zap.Int64("user_id", userID),
			zap.Error(cacheErr),
		)
	}

	return pending, nil
}

func (s *PasswordResetService) issueToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	raw, err := s.newToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate reset token: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)

	token := domain.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		TokenHash: security.HashToken(raw),
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.CreatePasswordReset(ctx, token); err != nil {
		return "", time.Time{}, fmt.Errorf("store reset token: %w", err)
	}

	return raw, expiresAt, nil
}

// resetURL builds the emailed link. The email rides along so the reset form
// can prefill it without an extra lookup.
func (s *PasswordResetService) resetURL(rawToken, email string) string {
	return fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		s.baseURL, url.QueryEscape(rawToken), url.QueryEscape(email))
}
