package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
)

// AuditRepository stores audit entries in the audit_trails table.
type AuditRepository struct {
	db  DBTX
	qb  sq.StatementBuilderType
	now func() time.Time
}

var _ port.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{
		db:  db,
		qb:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now: time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (r *AuditRepository) WithClock(now func() time.Time) *AuditRepository {
	r.now = now
	return r
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	query, args, err := r.qb.
		Insert("audit_trails").
		Columns("performed_by_id", "performed_by_name", "action", "description", "created_at").
		Values(entry.PerformedByID, entry.PerformedByName, entry.Action, entry.Description, r.now().UTC()).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return nil
}

func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	base := r.filtered(filter)

	countQuery, countArgs, err := r.qb.
		Select("COUNT(*)").
		FromSelect(base, "filtered").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	limit := filter.EffectiveLimit()
	offset := (filter.EffectivePage() - 1) * limit

	query, args, err := r.sorted(base, filter).
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	entries, err := r.queryEntries(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *AuditRepository) ListAll(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	query, args, err := r.sorted(r.filtered(filter), filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build export query: %w", err)
	}

	return r.queryEntries(ctx, query, args)
}

// filtered builds the shared SELECT with every active filter applied.
// Pagination and ordering are layered on separately.
func (r *AuditRepository) filtered(filter domain.AuditFilter) sq.SelectBuilder {
	builder := r.qb.
		Select("id", "created_at", "performed_by_id", "performed_by_name", "action", "description").
		From("audit_trails")

	if filter.Action != nil {
		builder = builder.Where(sq.Eq{"action": *filter.Action})
	}

	if filter.PerformedByID != nil {
		builder = builder.Where(sq.Eq{"performed_by_id": *filter.PerformedByID})
	}

	start, end := filter.EffectiveRange(r.now())
	builder = builder.Where(sq.GtOrEq{"created_at": start})
	builder = builder.Where(sq.LtOrEq{"created_at": end})

	if filter.Search != nil {
		pattern := "%" + *filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"performed_by_name": pattern},
			sq.ILike{"action": pattern},
			sq.ILike{"description": pattern},
		})
	}

	return builder
}

func (r *AuditRepository) sorted(builder sq.SelectBuilder, filter domain.AuditFilter) sq.SelectBuilder {
	// Column and order passed Validate's whitelist before reaching here.
	column, order := filter.EffectiveSort()
	return builder.OrderBy(fmt.Sprintf("%s %s", column, order))
}

func (r *AuditRepository) queryEntries(ctx context.Context, query string, args []any) ([]domain.AuditEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuditEntry, error) {
		var entry domain.AuditEntry
		err := row.Scan(
			&entry.ID,
			&entry.CreatedAt,
			&entry.PerformedByID,
			&entry.PerformedByName,
			&entry.Action,
			&entry.Description,
		)
		return entry, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit entries: %w", err)
	}

	return entries, nil
}
