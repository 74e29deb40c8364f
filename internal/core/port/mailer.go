package port

import (
	"context"
	"time"
)

// PasswordResetEmail carries everything needed to deliver one reset message.
type PasswordResetEmail struct {
	To        string
	Name      string
	ResetURL  string
	ExpiresAt time.Time
}

// Mailer delivers transactional email. Implementations must be safe for
// sequential reuse from the reset worker.
type Mailer interface {
	SendPasswordReset(ctx context.Context, msg PasswordResetEmail) error
}
