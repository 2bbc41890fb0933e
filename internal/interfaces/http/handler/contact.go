package handler

import (
	"context"

	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContactService is the contact use case surface the handler depends on
type ContactService interface {
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[company.Contact], error)
	Get(ctx context.Context, id uuid.UUID) (*company.Contact, error)
	Create(ctx context.Context, data map[string]any, by *uuid.UUID) (*company.Contact, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any, by *uuid.UUID) (*company.Contact, error)
	Archive(ctx context.Context, id uuid.UUID, reason string, by *uuid.UUID) (*company.Contact, error)
	Unarchive(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*company.Contact, error)
}

// ContactHandler handles contact endpoints
type ContactHandler struct {
	BaseHandler
	service ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(service ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// List godoc
// @Summary      List contacts
// @Tags         contacts
// @Produce      json
// @Param        offset query int false "Offset"
// @Param        limit query int false "Limit"
// @Param        sortby query string false "Sort field, prefix with - for descending"
// @Param        company_id query string false "Company ID"
// @Param        archived query bool false "Archived"
// @Success      200 {object} shared.Paginated[company.Contact]
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/contact [get]
func (h *ContactHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, uuidParam("company_id"), boolParam("archived"))
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
// @Summary      Retrieve a contact
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID"
// @Success      200 {object} company.Contact
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/contact/{id} [get]
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	contact, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// Create godoc
// @Summary      Create a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        request body object true "Contact fields"
// @Success      201 {object} company.Contact
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/contact [post]
func (h *ContactHandler) Create(c *gin.Context) {
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	contact, err := h.service.Create(c.Request.Context(), data, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contact)
}

// Update godoc
// @Summary      Partially update a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contact ID"
// @Param        request body object true "Contact fields"
// @Success      200 {object} company.Contact
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/contact/{id} [patch]
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	contact, err := h.service.Update(c.Request.Context(), id, data, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// Archive godoc
// @Summary      Archive a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contact ID"
// @Param        request body dto.ArchiveRequest true "Archive reason"
// @Success      200 {object} company.Contact
// @Security     BearerAuth
// @Router       /v4/contact/{id}/archive [post]
func (h *ContactHandler) Archive(c *gin.Context) {
	id, reason, ok := h.archiveRequest(c)
	if !ok {
		return
	}
	contact, err := h.service.Archive(c.Request.Context(), id, reason, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// Unarchive godoc
// @Summary      Unarchive a contact
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID"
// @Success      200 {object} company.Contact
// @Security     BearerAuth
// @Router       /v4/contact/{id}/unarchive [post]
func (h *ContactHandler) Unarchive(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	contact, err := h.service.Unarchive(c.Request.Context(), id, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}
