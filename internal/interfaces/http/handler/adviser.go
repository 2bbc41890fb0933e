package handler

import (
	"context"

	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdviserService is the adviser use case surface the handler depends on
type AdviserService interface {
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[adviser.Adviser], error)
	Get(ctx context.Context, id uuid.UUID) (*adviser.Adviser, error)
}

// AdviserHandler handles adviser endpoints
type AdviserHandler struct {
	BaseHandler
	service AdviserService
}

// NewAdviserHandler creates a new AdviserHandler
func NewAdviserHandler(service AdviserService) *AdviserHandler {
	return &AdviserHandler{service: service}
}

// List godoc
// @Summary      List advisers
// @Tags         advisers
// @Produce      json
// @Param        is_active query bool false "Active"
// @Param        autocomplete query string false "Name or email prefix"
// @Success      200 {object} shared.Paginated[adviser.Adviser]
// @Security     BearerAuth
// @Router       /adviser/ [get]
func (h *AdviserHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, boolParam("is_active"), stringParam("autocomplete"))
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// Get godoc
// @Summary      Retrieve an adviser
// @Tags         advisers
// @Produce      json
// @Param        id path string true "Adviser ID"
// @Success      200 {object} adviser.Adviser
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /adviser/{id}/ [get]
func (h *AdviserHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// Me returns the authenticated adviser
func (h *AdviserHandler) Me(c *gin.Context) {
	id, ok := h.RequireAdviserID(c)
	if !ok {
		return
	}
	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}
