package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/logger"
)

// RateLimit enforces a sliding-window attempt limit per client IP. On a full
// window the response carries Retry-After derived from the oldest attempt
// still inside it. Store failures fail open; availability wins over limiting.
func RateLimit(store port.RateLimitStore, maxAttempts int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := c.ClientIP()
		now := time.Now()
		ctx := c.Request.Context()

		if err := store.TrimWindow(ctx, identifier, window, now); err != nil {
			log.Warn("rate limit trim failed",
				zap.String("client_ip", logger.MaskIP(identifier)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		count, err := store.CountAttempts(ctx, identifier, window, now)
		if err != nil {
			log.Warn("rate limit count failed",
				zap.String("client_ip", logger.MaskIP(identifier)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count >= maxAttempts {
			retryAfter := window
			if oldest, found, err := store.OldestAttempt(ctx, identifier, window, now); err == nil && found {
				retryAfter = oldest.Add(window).Sub(now)
				if retryAfter < time.Second {
					retryAfter = time.Second
				}
			}

			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "too many attempts, try again later",
				},
			})
			return
		}

		if err := store.RecordAttempt(ctx, identifier, now); err != nil {
			log.Warn("rate limit record failed",
				zap.String("client_ip", logger.MaskIP(identifier)),
				zap.Error(err),
			)
		}

		c.Next()
	}
}
