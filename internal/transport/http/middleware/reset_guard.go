package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PendingChecker reports whether a user must complete a password reset.
type PendingChecker interface {
	IsResetPending(ctx context.Context, userID int64) (bool, error)
}

// ResetGuard blocks authenticated requests from users with a pending
// password reset. Their existing sessions stay technically valid but every
// guarded call answers 401 until the reset is completed.
func ResetGuard(checker PendingChecker, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok {
			// Auth did not run or failed; nothing to guard.
			c.Next()
			return
		}

		pending, err := checker.IsResetPending(c.Request.Context(), userID)
		if err != nil {
			log.Error("pending reset check failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "could not verify account status",
				},
			})
			return
		}

		if pending {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "reset_password_pending",
					"message": "a password reset is pending for this account, complete it before continuing",
				},
			})
			return
		}

		c.Next()
	}
}
