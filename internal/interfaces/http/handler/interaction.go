package handler

import (
	"context"

	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InteractionService is the interaction use case surface the handler depends on
type InteractionService interface {
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[interaction.Interaction], error)
	Get(ctx context.Context, id uuid.UUID) (*interaction.Interaction, error)
	Create(ctx context.Context, data map[string]any, by *uuid.UUID) (*interaction.Interaction, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any, by *uuid.UUID) (*interaction.Interaction, error)
	Archive(ctx context.Context, id uuid.UUID, reason string, by *uuid.UUID) (*interaction.Interaction, error)
	Unarchive(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*interaction.Interaction, error)
}

// InteractionHandler handles interaction endpoints
type InteractionHandler struct {
	BaseHandler
	service InteractionService
}

// NewInteractionHandler creates a new InteractionHandler
func NewInteractionHandler(service InteractionService) *InteractionHandler {
	return &InteractionHandler{service: service}
}

// List godoc
// @Summary      List interactions
// @Tags         interactions
// @Produce      json
// @Param        offset query int false "Offset"
// @Param        limit query int false "Limit"
// @Param        sortby query string false "Sort field, prefix with - for descending"
// @Param        company_id query string false "Company ID"
// @Param        contact_id query string false "Contact ID"
// @Param        investment_project_id query string false "Investment project ID"
// @Param        kind query string false "interaction or service_delivery"
// @Success      200 {object} shared.Paginated[interaction.Interaction]
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/interaction [get]
func (h *InteractionHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c,
		uuidParam("company_id"),
		uuidParam("contact_id"),
		uuidParam("investment_project_id"),
		stringParam("kind"),
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
// @Summary      Retrieve an interaction
// @Tags         interactions
// @Produce      json
// @Param        id path string true "Interaction ID"
// @Success      200 {object} interaction.Interaction
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/interaction/{id} [get]
func (h *InteractionHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	record, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Create godoc
// @Summary      Create an interaction
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Param        request body object true "Interaction fields"
// @Success      201 {object} interaction.Interaction
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/interaction [post]
func (h *InteractionHandler) Create(c *gin.Context) {
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	record, err := h.service.Create(c.Request.Context(), data, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// Update godoc
// @Summary      Partially update an interaction
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Interaction ID"
// @Param        request body object true "Interaction fields"
// @Success      200 {object} interaction.Interaction
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/interaction/{id} [patch]
func (h *InteractionHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	record, err := h.service.Update(c.Request.Context(), id, data, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Archive godoc
// @Summary      Archive an interaction
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Interaction ID"
// @Param        request body dto.ArchiveRequest true "Archive reason"
// @Success      200 {object} interaction.Interaction
// @Security     BearerAuth
// @Router       /v4/interaction/{id}/archive [post]
func (h *InteractionHandler) Archive(c *gin.Context) {
	id, reason, ok := h.archiveRequest(c)
	if !ok {
		return
	}
	record, err := h.service.Archive(c.Request.Context(), id, reason, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Unarchive godoc
// @Summary      Unarchive an interaction
// @Tags         interactions
// @Produce      json
// @Param        id path string true "Interaction ID"
// @Success      200 {object} interaction.Interaction
// @Security     BearerAuth
// @Router       /v4/interaction/{id}/unarchive [post]
func (h *InteractionHandler) Unarchive(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	record, err := h.service.Unarchive(c.Request.Context(), id, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}
