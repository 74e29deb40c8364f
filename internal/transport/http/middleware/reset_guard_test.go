package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type stubChecker struct {
	pending map[int64]bool
	err     error
}

func (s *stubChecker) IsResetPending(_ context.Context, userID int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.pending[userID], nil
}

func guardedRouter(t *testing.T, checker PendingChecker, userID *int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set(ContextKeyUserID, *userID)
		}
		c.Next()
	})
	router.Use(ResetGuard(checker, zaptest.NewLogger(t)))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router
}

func TestResetGuardAllowsUsersWithoutPendingReset(t *testing.T) {
	userID := int64(5)
	router := guardedRouter(t, &stubChecker{pending: map[int64]bool{}}, &userID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestResetGuardBlocksPendingUsers(t *testing.T) {
	userID := int64(5)
	router := guardedRouter(t, &stubChecker{pending: map[int64]bool{5: true}}, &userID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "reset_password_pending") {
		t.Fatalf("expected reset_password_pending code in body, got %s", rec.Body.String())
	}
}

func TestResetGuardSkipsUnauthenticatedRequests(t *testing.T) {
	router := guardedRouter(t, &stubChecker{pending: map[int64]bool{5: true}}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without auth context, got %d", rec.Code)
	}
}

func TestResetGuardFailsClosedOnCheckerError(t *testing.T) {
	userID := int64(5)
	router := guardedRouter(t, &stubChecker{err: errors.New("redis down")}, &userID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
