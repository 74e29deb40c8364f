package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/repository"
)

// UserRepository reads and updates rows in the users table.
type UserRepository struct {
	db DBTX
	qb sq.StatementBuilderType
}

var _ port.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var userColumns = []string{
	"id", "name", "email", "password_hash", "is_active", "is_reset_password_pending", "created_at", "updated_at",
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query, args, err := r.qb.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.scanUser(r.db.QueryRow(ctx, query, args...))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query, args, err := r.qb.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.scanUser(r.db.QueryRow(ctx, query, args...))
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsResetPasswordPending,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	rows, err := r.db.Query(ctx, "SELECT id, name FROM users WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("query display names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan display name: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read display names: %w", err)
	}

	return names, nil
}

func (r *UserRepository) MarkResetPasswordPending(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	// One set-based update. Ids without a matching row are simply not
	// updated, so the caller can pass the original request list unchanged.
	_, err := r.db.Exec(ctx,
		"UPDATE users SET is_reset_password_pending = true, updated_at = NOW() WHERE id = ANY($1)",
		ids,
	)
	if err != nil {
		return fmt.Errorf("mark reset password pending: %w", err)
	}
	return nil
}

func (r *UserRepository) ClearResetPasswordPending(ctx context.Context, id int64) error {
	query, args, err := r.qb.
		Update("users").
		Set("is_reset_password_pending", false).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("clear reset password pending: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) IsResetPasswordPending(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.qb.
		Select("is_reset_password_pending").
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var pending bool
	err = r.db.QueryRow(ctx, query, args...).Scan(&pending)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, repository.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("query pending flag: %w", err)
	}
	return pending, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, changedAt time.Time) error {
	query, args, err := r.qb.
		Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", changedAt).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
