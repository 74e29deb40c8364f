package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/security"
	"github.com/nenecchuu/kaef-hris-sub002/internal/repository"
	"github.com/nenecchuu/kaef-hris-sub002/internal/transport/http/middleware"
	"github.com/nenecchuu/kaef-hris-sub002/internal/usecase"
)

// PasswordHandler serves the bulk and self-service password reset endpoints.
type PasswordHandler struct {
	resets *usecase.PasswordResetService
	users  port.UserRepository
	logger *zap.Logger
}

func NewPasswordHandler(resets *usecase.PasswordResetService, users port.UserRepository, logger *zap.Logger) *PasswordHandler {
	return &PasswordHandler{resets: resets, users: users, logger: logger}
}

// BulkReset handles POST /api/v1/users/reset-password. The job is queued and
// the response returns before any email is sent.
func (h *PasswordHandler) BulkReset(c *gin.Context) {
	var req bulkResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "user_ids is required")
		return
	}

	performer := h.performer(c)

	jobID, err := h.resets.EnqueueBulkReset(c.Request.Context(), performer, req.UserIDs)
	if err != nil {
		RespondWithMappedError(c, h.logger, err, ErrorCase{
			Err:     usecase.ErrNoUserIDs,
			Status:  http.StatusUnprocessableEntity,
			Code:    "validation_failed",
			Message: "user_ids must not be empty",
		})
		return
	}

	c.JSON(http.StatusAccepted, bulkResetResponse{
		JobID:   jobID,
		Message: "password reset emails are being sent",
	})
}

// performer resolves the acting admin from the auth context. The fresh
// lookup picks up the current display name for the denormalized audit copy.
func (h *PasswordHandler) performer(c *gin.Context) *domain.User {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return nil
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.Warn("performer lookup failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}

		user = &domain.User{ID: userID}
		if name, ok := middleware.UserNameFromContext(c); ok {
			user.Name = name
		}
	}

	return user
}

// RequestReset handles POST /api/v1/password/reset/request. The response is
// identical whether or not the email belongs to an account.
func (h *PasswordHandler) RequestReset(c *gin.Context) {
	var req selfResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "a valid email is required")
		return
	}

	if err := h.resets.RequestSelfReset(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusAccepted, messageResponse{
		Message: "if the email belongs to an account, a reset link has been sent",
	})
}

// ConfirmReset handles POST /api/v1/password/reset/confirm.
func (h *PasswordHandler) ConfirmReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "token and password are required")
		return
	}

	if err := h.resets.ConfirmReset(c.Request.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, security.ErrWeakPassword) {
			c.JSON(http.StatusUnprocessableEntity, errorResponse{
				Error: errorBody{
					Code:    "validation_failed",
					Message: "password does not meet policy requirements",
					Fields:  map[string]string{"password": err.Error()},
				},
			})
			return
		}

		RespondWithMappedError(c, h.logger, err, ErrorCase{
			Err:     usecase.ErrInvalidResetToken,
			Status:  http.StatusBadRequest,
			Code:    "invalid_reset_token",
			Message: "the reset link is invalid or has expired",
		})
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "password has been reset"})
}
