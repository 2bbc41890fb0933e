package handler

import (
	"context"

	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectService is the investment project use case surface the handler depends on
type ProjectService interface {
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[investment.Project], error)
	Get(ctx context.Context, id uuid.UUID) (*investment.Project, error)
	Create(ctx context.Context, data map[string]any, by *uuid.UUID) (*investment.Project, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any, by *uuid.UUID) (*investment.Project, error)
}

// ProjectHandler handles investment project endpoints
type ProjectHandler struct {
	BaseHandler
	service ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(service ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// List godoc
// @Summary      List investment projects
// @Tags         investment
// @Produce      json
// @Param        offset query int false "Offset"
// @Param        limit query int false "Limit"
// @Param        sortby query string false "Sort field, prefix with - for descending"
// @Param        investor_company_id query string false "Investor company ID"
// @Param        stage_id query string false "Stage ID"
// @Param        status query string false "Status"
// @Success      200 {object} shared.Paginated[investment.Project]
// @Security     BearerAuth
// @Router       /v3/investment [get]
func (h *ProjectHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c,
		uuidParam("investor_company_id"),
		uuidParam("stage_id"),
		stringParam("status"),
	)
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
// @Summary      Retrieve an investment project
// @Tags         investment
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} investment.Project
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v3/investment/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	project, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// Create godoc
// @Summary      Create an investment project
// @Tags         investment
// @Accept       json
// @Produce      json
// @Param        request body object true "Project fields"
// @Success      201 {object} investment.Project
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v3/investment [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	project, err := h.service.Create(c.Request.Context(), data, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, project)
}

// Update godoc
// @Summary      Partially update an investment project
// @Tags         investment
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        request body object true "Project fields"
// @Success      200 {object} investment.Project
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v3/investment/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	project, err := h.service.Update(c.Request.Context(), id, data, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}
