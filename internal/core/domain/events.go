package domain

import "time"

// AuditRecordedEvent is published after an audit entry has been persisted.
type AuditRecordedEvent struct {
	EventID       string
	EntryID       int64
	Action        string
	PerformedByID *int64
	CreatedAt     time.Time
}

// PasswordResetDispatchedEvent is published once a reset email for one target
// user has been handed to the mail transport.
type PasswordResetDispatchedEvent struct {
	EventID       string
	JobID         string
	UserID        int64
	Email         string
	PerformedByID *int64
	RequestedAt   time.Time
	ExpiresAt     time.Time
}

// PasswordChangedEvent is published when a reset completes and the pending
// flag has been cleared.
type PasswordChangedEvent struct {
	EventID   string
	UserID    int64
	ChangedAt time.Time
}
