package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/repository"
)

// TokenRepository stores password reset tokens. Only SHA-256 digests of the
// raw tokens are persisted.
type TokenRepository struct {
	db DBTX
	qb sq.StatementBuilderType
}

var _ port.TokenRepository = (*TokenRepository)(nil)

func NewTokenRepository(db DBTX) *TokenRepository {
	return &TokenRepository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *TokenRepository) CreatePasswordReset(ctx context.Context, token domain.PasswordResetToken) error {
	query, args, err := r.qb.
		Insert("password_reset_tokens").
		Columns("id", "user_id", "email", "token_hash", "created_at", "expires_at").
		Values(token.ID, token.UserID, token.Email, token.TokenHash, token.CreatedAt, token.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

func (r *TokenRepository) GetPasswordResetByHash(ctx context.Context, hash string) (*domain.PasswordResetToken, error) {
	query, args, err := r.qb.
		Select("id", "user_id", "email", "token_hash", "created_at", "expires_at", "used_at").
		From("password_reset_tokens").
		Where(sq.Eq{"token_hash": hash}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var token domain.PasswordResetToken
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&token.ID,
		&token.UserID,
		&token.Email,
		&token.TokenHash,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.UsedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan reset token: %w", err)
	}
	return &token, nil
}

func (r *TokenRepository) ConsumePasswordReset(ctx context.Context, id string) error {
	// used_at IS NULL guards the single-use property: two racing confirms
	// cannot both consume the same token.
	query, args, err := r.qb.
		Update("password_reset_tokens").
		Set("used_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Where("used_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
