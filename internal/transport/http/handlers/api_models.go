package handlers

import (
	"time"

	"github.com/nenecchuu/kaef-hris-sub002/internal/usecase"
)

type auditTrailItem struct {
	ID                   int64     `json:"id"`
	CreatedAt            time.Time `json:"created_at"`
	FormattedCreatedAt   string    `json:"formatted_created_at"`
	PerformedByID        *int64    `json:"performed_by_id"`
	PerformedByName      *string   `json:"performed_by_name"`
	Action               string    `json:"action"`
	Description          string    `json:"description"`
	FormattedDescription string    `json:"formatted_description"`
}

type pageMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

type auditTrailListResponse struct {
	Data []auditTrailItem `json:"data"`
	Meta pageMeta         `json:"meta"`
}

func toAuditTrailListResponse(items []usecase.AuditTrailItem, meta usecase.PageMeta) auditTrailListResponse {
	data := make([]auditTrailItem, 0, len(items))
	for _, item := range items {
		data = append(data, auditTrailItem{
			ID:                   item.ID,
			CreatedAt:            item.CreatedAt,
			FormattedCreatedAt:   item.FormattedCreatedAt,
			PerformedByID:        item.PerformedByID,
			PerformedByName:      item.PerformedByName,
			Action:               item.Action,
			Description:          item.Description,
			FormattedDescription: item.FormattedDescription,
		})
	}

	return auditTrailListResponse{
		Data: data,
		Meta: pageMeta{
			CurrentPage: meta.CurrentPage,
			PerPage:     meta.PerPage,
			Total:       meta.Total,
		},
	}
}

type bulkResetRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required"`
}

type bulkResetResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type selfResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type confirmResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}
