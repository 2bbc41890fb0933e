package handler

import (
	"context"

	"github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChangelogService builds the change history of a record
type ChangelogService interface {
	Changelog(ctx context.Context, objectType string, id uuid.UUID, offset, limit int) (*shared.Paginated[audit.Entry], error)
}

// AuditHandler serves the audit history endpoints
type AuditHandler struct {
	BaseHandler
	service ChangelogService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service ChangelogService) *AuditHandler {
	return &AuditHandler{service: service}
}

// For returns the audit endpoint of one record type. The record ID is read
// from the "id" path parameter.
//
// @Summary      List the changes made to a record
// @Tags         audit
// @Produce      json
// @Param        id path string true "Record ID"
// @Success      200 {object} shared.Paginated[audit.Entry]
// @Security     BearerAuth
// @Router       /v4/company/{id}/audit [get]
// @Router       /v4/contact/{id}/audit [get]
// @Router       /v4/interaction/{id}/audit [get]
// @Router       /v3/investment/{id}/audit [get]
func (h *AuditHandler) For(objectType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.PathID(c, "id")
		if !ok {
			return
		}
		filter, ok := h.ListFilter(c)
		if !ok {
			return
		}
		page, err := h.service.Changelog(c.Request.Context(), objectType, id, filter.Offset, filter.Limit)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, page)
	}
}
