package handler

import (
	"context"

	companyapp "github.com/datahub/backend/internal/application/company"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReferralService is the company referral use case surface the handler depends on
type ReferralService interface {
	List(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) (*shared.Paginated[company.Referral], error)
	Get(ctx context.Context, id, adviserID uuid.UUID) (*company.Referral, error)
	Create(ctx context.Context, req companyapp.CreateReferralRequest, by *uuid.UUID) (*company.Referral, error)
	Complete(ctx context.Context, id uuid.UUID, interactionData map[string]any, by *uuid.UUID) (*company.Referral, error)
}

// ReferralHandler handles company referral endpoints. Advisers only see
// referrals they sent or received.
type ReferralHandler struct {
	BaseHandler
	service ReferralService
}

// NewReferralHandler creates a new ReferralHandler
func NewReferralHandler(service ReferralService) *ReferralHandler {
	return &ReferralHandler{service: service}
}

// List godoc
// @Summary      List referrals sent or received by the current adviser
// @Tags         company-referrals
// @Produce      json
// @Param        offset query int false "Offset"
// @Param        limit query int false "Limit"
// @Param        status query string false "outstanding or complete"
// @Success      200 {object} shared.Paginated[company.Referral]
// @Security     BearerAuth
// @Router       /v4/company-referral [get]
func (h *ReferralHandler) List(c *gin.Context) {
	adviserID, ok := h.RequireAdviserID(c)
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c, stringParam("status"))
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
// @Summary      Retrieve a referral
// @Tags         company-referrals
// @Produce      json
// @Param        id path string true "Referral ID"
// @Success      200 {object} company.Referral
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/company-referral/{id} [get]
func (h *ReferralHandler) Get(c *gin.Context) {
	adviserID, ok := h.RequireAdviserID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	referral, err := h.service.Get(c.Request.Context(), id, adviserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, referral)
}

// Create godoc
// @Summary      Refer a company to another adviser
// @Tags         company-referrals
// @Accept       json
// @Produce      json
// @Param        request body companyapp.CreateReferralRequest true "Referral"
// @Success      201 {object} company.Referral
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/company-referral [post]
func (h *ReferralHandler) Create(c *gin.Context) {
	var req companyapp.CreateReferralRequest
	if !h.BindJSON(c, &req) {
		return
	}
	referral, err := h.service.Create(c.Request.Context(), req, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, referral)
}

// Complete godoc
// @Summary      Complete a referral by recording an interaction
// @Tags         company-referrals
// @Accept       json
// @Produce      json
// @Param        id path string true "Referral ID"
// @Param        request body object true "Interaction fields"
// @Success      201 {object} company.Referral
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/company-referral/{id}/complete [post]
func (h *ReferralHandler) Complete(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	data, ok := h.BindData(c)
	if !ok {
		return
	}
	referral, err := h.service.Complete(c.Request.Context(), id, data, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, referral)
}
