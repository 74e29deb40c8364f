package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/usecase"
)

// AuditHandler serves the audit trail listing and export endpoints.
type AuditHandler struct {
	service *usecase.AuditService
	logger  *zap.Logger
}

func NewAuditHandler(service *usecase.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{service: service, logger: logger}
}

// List handles GET /api/v1/audit-trails.
func (h *AuditHandler) List(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	items, meta, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		RespondWithMappedError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toAuditTrailListResponse(items, meta))
}

// Export handles GET /api/v1/audit-trails/export. The same filters apply but
// pagination is ignored; the workbook always covers the full filtered set.
func (h *AuditHandler) Export(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.service.Export(c.Request.Context(), filter)
	if err != nil {
		RespondWithMappedError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// parseAuditFilter binds the shared listing query parameters. An absent
// parameter stays nil; an empty string is a present-but-empty value and binds
// to a pointer to "".
func parseAuditFilter(c *gin.Context) (domain.AuditFilter, error) {
	var filter domain.AuditFilter

	if val, ok := c.GetQuery("action"); ok {
		filter.Action = &val
	}
	if val, ok := c.GetQuery("performed_by_id"); ok {
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("performed_by_id must be an integer")
		}
		filter.PerformedByID = &id
	}
	if val, ok := c.GetQuery("start_date"); ok {
		parsed, err := parseDateParam(val, false)
		if err != nil {
			return filter, fmt.Errorf("start_date must be YYYY-MM-DD or RFC3339")
		}
		filter.StartDate = &parsed
	}
	if val, ok := c.GetQuery("end_date"); ok {
		parsed, err := parseDateParam(val, true)
		if err != nil {
			return filter, fmt.Errorf("end_date must be YYYY-MM-DD or RFC3339")
		}
		filter.EndDate = &parsed
	}
	if val, ok := c.GetQuery("search"); ok {
		filter.Search = &val
	}
	if val, ok := c.GetQuery("sort_column"); ok {
		filter.SortColumn = &val
	}
	if val, ok := c.GetQuery("sort_order"); ok {
		filter.SortOrder = &val
	}
	if val, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return filter, fmt.Errorf("limit must be an integer")
		}
		filter.Limit = &limit
	}
	if val, ok := c.GetQuery("page"); ok {
		page, err := strconv.Atoi(val)
		if err != nil {
			return filter, fmt.Errorf("page must be an integer")
		}
		filter.Page = &page
	}

	return filter, nil
}

// parseDateParam accepts a bare date or a full RFC3339 timestamp. A bare end
// date extends through the end of that day so a single-day range covers the
// whole day.
func parseDateParam(val string, endOfDay bool) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, val); err == nil {
		return parsed, nil
	}

	parsed, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, err
	}

	if endOfDay {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return parsed, nil
}
