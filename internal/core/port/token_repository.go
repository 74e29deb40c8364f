package port

import (
	"context"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
)

// TokenRepository persists single-use password reset tokens.
type TokenRepository interface {
	CreatePasswordReset(ctx context.Context, token domain.PasswordResetToken) error
	GetPasswordResetByHash(ctx context.Context, hash string) (*domain.PasswordResetToken, error)
	// ConsumePasswordReset marks the token used; consuming an already used
	// token returns repository.ErrNotFound.
	ConsumePasswordReset(ctx context.Context, id string) error
}
