package port

import (
	"context"
	"time"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
)

// UserRepository exposes the slice of user persistence the audit and reset
// flows require.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// DisplayNames resolves current display names for the given ids. Missing
	// ids are simply absent from the result.
	DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error)
	// MarkResetPasswordPending flags every id in one set-based update.
	// Ids without a matching row are a no-op.
	MarkResetPasswordPending(ctx context.Context, ids []int64) error
	ClearResetPasswordPending(ctx context.Context, id int64) error
	IsResetPasswordPending(ctx context.Context, id int64) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string, changedAt time.Time) error
}
