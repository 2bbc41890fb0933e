package handler

import (
	"context"

	"github.com/datahub/backend/internal/domain/exportwin"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExportWinService is the export win use case surface the handler depends on
type ExportWinService interface {
	List(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) (*shared.Paginated[exportwin.Win], error)
	Get(ctx context.Context, id, adviserID uuid.UUID) (*exportwin.Win, error)
	Create(ctx context.Context, data map[string]any, adviserID uuid.UUID) (*exportwin.Win, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any, adviserID uuid.UUID) (*exportwin.Win, error)
	ResendCustomerEmail(ctx context.Context, id, adviserID uuid.UUID) (*exportwin.Win, error)
}

// ExportWinHandler handles export win endpoints. Every action is scoped to
// the wins the current adviser can see.
type ExportWinHandler struct {
	BaseHandler
	service ExportWinService
}

// NewExportWinHandler creates a new ExportWinHandler
func NewExportWinHandler(service ExportWinService) *ExportWinHandler {
	return &ExportWinHandler{service: service}
}

// List godoc
// @Summary      List the export wins of the current adviser
// @Tags         export-wins
// @Produce      json
// @Param        company_id query string false "Company ID"
// @Success      200 {object} shared.Paginated[exportwin.Win]
// @Security     BearerAuth
// @Router       /v4/export-win [get]
func (h *ExportWinHandler) List(c *gin.Context) {
	adviserID, ok := h.RequireAdviserID(c)
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c, uuidParam("company_id"))
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), adviserID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// Get godoc
// @Summary      Retrieve an export win
// @Tags         export-wins
// @Produce      json
// @Param        id path string true "Export win ID"
// @Success      200 {object} exportwin.Win
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/export-win/{id} [get]
func (h *ExportWinHandler) Get(c *gin.Context) {
	h.withWin(c, func(ctx context.Context, id, adviserID uuid.UUID) (*exportwin.Win, error) {
		return h.service.Get(ctx, id, adviserID)
	})
}

// Create godoc
// @Summary      Create an export win
// @Tags         export-wins
// @Accept       json
// @Produce      json
// @Param        request body object true "Export win fields"
// @Success      201 {object} exportwin.Win
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/export-win [post]
func (h *ExportWinHandler) Create(c *gin.Context) {
	adviserID, ok := h.RequireAdviserID(c)
	if !ok {
		return
	}
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	win, err := h.service.Create(c.Request.Context(), data, adviserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, win)
}

// Update godoc
// @Summary      Partially update an export win
// @Tags         export-wins
// @Accept       json
// @Produce      json
// @Param        id path string true "Export win ID"
// @Param        request body object true "Export win fields"
// @Success      200 {object} exportwin.Win
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/export-win/{id} [patch]
func (h *ExportWinHandler) Update(c *gin.Context) {
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	h.withWin(c, func(ctx context.Context, id, adviserID uuid.UUID) (*exportwin.Win, error) {
		return h.service.Update(ctx, id, data, adviserID)
	})
}

// ResendCustomerEmail godoc
// @Summary      Send the customer confirmation email again
// @Tags         export-wins
// @Produce      json
// @Param        id path string true "Export win ID"
// @Success      200 {object} exportwin.Win
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/export-win/{id}/resend-customer-email [post]
func (h *ExportWinHandler) ResendCustomerEmail(c *gin.Context) {
	h.withWin(c, h.service.ResendCustomerEmail)
}

func (h *ExportWinHandler) withWin(c *gin.Context, fn func(ctx context.Context, id, adviserID uuid.UUID) (*exportwin.Win, error)) {
	adviserID, ok := h.RequireAdviserID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	win, err := fn(c.Request.Context(), id, adviserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, win)
}
