package handler

import (
	"context"

	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessageReasonRequired is returned when an archive request has no reason
const MessageReasonRequired = "This field is required."

// CompanyService is the company use case surface the handler depends on
type CompanyService interface {
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[company.Company], error)
	Get(ctx context.Context, id uuid.UUID) (*company.Company, error)
	Create(ctx context.Context, data map[string]any, by *uuid.UUID) (*company.Company, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any, by *uuid.UUID) (*company.Company, error)
	Archive(ctx context.Context, id uuid.UUID, reason string, by *uuid.UUID) (*company.Company, error)
	Unarchive(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*company.Company, error)
}

// CompanyHandler handles company endpoints
type CompanyHandler struct {
	BaseHandler
	service CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(service CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// List godoc
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Param        offset query int false "Offset"
// @Param        limit query int false "Limit"
// @Param        sortby query string false "Sort field, prefix with - for descending"
// @Param        name query string false "Name contains"
// @Param        archived query bool false "Archived"
// @Param        sector_id query string false "Sector ID"
// @Param        uk_region_id query string false "UK region ID"
// @Param        global_headquarters_id query string false "Global headquarters ID"
// @Success      200 {object} shared.Paginated[company.Company]
// @Failure      400 {object} shared.ValidationErrors
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/company [get]
func (h *CompanyHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c,
		stringParam("name"),
		boolParam("archived"),
		uuidParam("sector_id"),
		uuidParam("uk_region_id"),
		uuidParam("global_headquarters_id"),
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
// @Summary      Retrieve a company
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      200 {object} company.Company
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/company/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	co, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, co)
}

// Create godoc
// @Summary      Create a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request body object true "Company fields"
// @Success      201 {object} company.Company
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/company [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	co, err := h.service.Create(c.Request.Context(), data, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, co)
}

// Update godoc
// @Summary      Partially update a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID"
// @Param        request body object true "Company fields"
// @Success      200 {object} company.Company
// @Failure      400 {object} shared.ValidationErrors
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/company/{id} [patch]
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	co, err := h.service.Update(c.Request.Context(), id, data, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, co)
}

// Archive godoc
// @Summary      Archive a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID"
// @Param        request body dto.ArchiveRequest true "Archive reason"
// @Success      200 {object} company.Company
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/company/{id}/archive [post]
func (h *CompanyHandler) Archive(c *gin.Context) {
	id, reason, ok := h.archiveRequest(c)
	if !ok {
		return
	}
	co, err := h.service.Archive(c.Request.Context(), id, reason, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, co)
}

// Unarchive godoc
// @Summary      Unarchive a company
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      200 {object} company.Company
// @Security     BearerAuth
// @Router       /v4/company/{id}/unarchive [post]
func (h *CompanyHandler) Unarchive(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	co, err := h.service.Unarchive(c.Request.Context(), id, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, co)
}

// archiveRequest reads the record ID and the required archive reason
func (h *BaseHandler) archiveRequest(c *gin.Context) (uuid.UUID, string, bool) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return uuid.Nil, "", false
	}
	var req dto.ArchiveRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return uuid.Nil, "", false
	}
	if req.Reason == "" {
		h.HandleError(c, shared.NewFieldError("reason", MessageReasonRequired))
		return uuid.Nil, "", false
	}
	return id, req.Reason, true
}
