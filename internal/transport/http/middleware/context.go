package middleware

import (
	"github.com/gin-gonic/gin"
)

// Context keys shared between middleware and handlers.
const (
	ContextKeyUserID    = "auth_user_id"
	ContextKeyUserName  = "auth_user_name"
	ContextKeyRequestID = "request_id"
)

// UserIDFromContext returns the authenticated user id set by Auth.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	val, ok := c.Get(ContextKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := val.(int64)
	return id, ok
}

// UserNameFromContext returns the authenticated user's display name.
func UserNameFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(ContextKeyUserName)
	if !ok {
		return "", false
	}
	name, ok := val.(string)
	return name, ok
}
