package port

import (
	"context"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
)

// AuditRepository persists and reads the append-only audit log. Entries are
// never updated or deleted through this interface.
type AuditRepository interface {
	// Create appends one entry and fills its generated ID and CreatedAt.
	Create(ctx context.Context, entry *domain.AuditEntry) error
	// List returns one page of filtered, sorted entries plus the total
	// filtered count.
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error)
	// ListAll returns the full filtered, sorted result set, ignoring the
	// filter's pagination fields. Used by the export path.
	ListAll(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}
