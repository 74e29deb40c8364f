package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/logger"
)

// ErrorCase maps a sentinel error to an HTTP response.
type ErrorCase struct {
	Err     error
	Status  int
	Code    string
	Message string
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// RespondWithMappedError renders err using the supplied cases. Validation
// errors always map to 422 with per-field details; anything unmatched is a
// logged 500 with no internals leaked.
func RespondWithMappedError(c *gin.Context, log *zap.Logger, err error, cases ...ErrorCase) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error: errorBody{
				Code:    "validation_failed",
				Message: "one or more fields are invalid",
				Fields:  validationErr.Fields,
			},
		})
		return
	}

	for _, ec := range cases {
		if errors.Is(err, ec.Err) {
			c.JSON(ec.Status, errorResponse{
				Error: errorBody{
					Code:    ec.Code,
					Message: ec.Message,
				},
			})
			return
		}
	}

	logger.WithContext(c.Request.Context(), log).Error("unhandled request error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, errorResponse{
		Error: errorBody{
			Code:    "internal_error",
			Message: "an unexpected error occurred",
		},
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Error: errorBody{
			Code:    "bad_request",
			Message: message,
		},
	})
}
