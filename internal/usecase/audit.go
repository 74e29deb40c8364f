package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/telemetry"
)

// AuditTrailItem is one listing row. Description holds the stored raw text;
// the Formatted fields are computed at read time and never persisted.
type AuditTrailItem struct {
	ID                   int64
	CreatedAt            time.Time
	FormattedCreatedAt   string
	PerformedByID        *int64
	PerformedByName      *string
	Action               string
	Description          string
	FormattedDescription string
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	CurrentPage int
	PerPage     int
	Total       int64
}

// AuditService owns the audit trail read and write paths.
type AuditService struct {
	audits  port.AuditRepository
	users   port.UserRepository
	events  port.EventPublisher
	metrics *telemetry.Provider
	logger  *zap.Logger

	exportLocation *time.Location
	now            func() time.Time
}

func NewAuditService(
	audits port.AuditRepository,
	users port.UserRepository,
	events port.EventPublisher,
	metrics *telemetry.Provider,
	logger *zap.Logger,
	exportLocation *time.Location,
) *AuditService {
	if exportLocation == nil {
		exportLocation = time.UTC
	}
	return &AuditService{
		audits:         audits,
		users:          users,
		events:         events,
		metrics:        metrics,
		logger:         logger,
		exportLocation: exportLocation,
		now:            time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *AuditService) WithClock(now func() time.Time) *AuditService {
	s.now = now
	return s
}

// List returns one page of audit entries matching the filter. Invalid sort or
// pagination values fail validation before any query runs.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]AuditTrailItem, PageMeta, error) {
	if err := filter.Validate(); err != nil {
		return nil, PageMeta{}, err
	}

	entries, total, err := s.audits.List(ctx, filter)
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("list audit entries: %w", err)
	}

	items, err := s.resolveEntries(ctx, entries)
	if err != nil {
		return nil, PageMeta{}, err
	}

	meta := PageMeta{
		CurrentPage: filter.EffectivePage(),
		PerPage:     filter.EffectiveLimit(),
		Total:       total,
	}

	return items, meta, nil
}

// listAllResolved returns every matching entry with resolved descriptions,
// ignoring pagination. Export path.
func (s *AuditService) listAllResolved(ctx context.Context, filter domain.AuditFilter) ([]AuditTrailItem, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	entries, err := s.audits.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list audit entries for export: %w", err)
	}

	return s.resolveEntries(ctx, entries)
}

// resolveEntries substitutes description placeholders using one batched name
// lookup across the whole result set.
func (s *AuditService) resolveEntries(ctx context.Context, entries []domain.AuditEntry) ([]AuditTrailItem, error) {
	idSet := make(map[int64]struct{})
	for _, entry := range entries {
		for _, id := range domain.ReferencedUserIDs(entry.Description) {
			idSet[id] = struct{}{}
		}
	}

	var names map[int64]string
	if len(idSet) > 0 {
		ids := make([]int64, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}

		var err error
		names, err = s.users.DisplayNames(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve display names: %w", err)
		}
	}

	resolve := func(id int64) (string, bool) {
		name, ok := names[id]
		return name, ok
	}

	items := make([]AuditTrailItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, AuditTrailItem{
			ID:                   entry.ID,
			CreatedAt:            entry.CreatedAt,
			FormattedCreatedAt:   entry.CreatedAt.In(s.exportLocation).Format(reportTimestampLayout),
			PerformedByID:        entry.PerformedByID,
			PerformedByName:      entry.PerformedByName,
			Action:               entry.Action,
			Description:          entry.Description,
			FormattedDescription: domain.FormatDescription(entry.Description, resolve),
		})
	}

	return items, nil
}

// Record appends one audit entry and publishes the recorded event. Publish
// failures are logged, never surfaced, because the entry is already durable.
func (s *AuditService) Record(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.Action == "" {
		return &domain.ValidationError{Fields: map[string]string{"action": "must not be empty"}}
	}

	if err := s.audits.Create(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	s.metrics.AuditEntriesRecorded.Inc()

	event := domain.AuditRecordedEvent{
		EventID:       uuid.NewString(),
		EntryID:       entry.ID,
		Action:        entry.Action,
		PerformedByID: entry.PerformedByID,
		CreatedAt:     entry.CreatedAt,
	}
	if err := s.events.PublishAuditRecorded(ctx, event); err != nil {
		s.logger.Warn("audit recorded event publish failed",
			zap.Int64("entry_id", entry.ID),
			zap.Error(err),
		)
	}

	return nil
}
