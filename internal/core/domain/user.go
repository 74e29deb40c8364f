package domain

import "time"

// User is the HRIS employee account referenced by the audit and reset flows.
// The wider employee profile lives outside this core; only the fields the
// reset workflow consumes or mutates are modelled here.
type User struct {
	ID                     int64
	Name                   string
	Email                  string
	PasswordHash           string
	IsActive               bool
	IsResetPasswordPending bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// PasswordResetToken is a single-use reset credential. Only the SHA-256 hash
// of the raw token is persisted.
type PasswordResetToken struct {
	ID        string
	UserID    int64
	Email     string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}
