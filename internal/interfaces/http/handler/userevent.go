package handler

import (
	"context"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/userevent"
	"github.com/gin-gonic/gin"
)

// UserEventService lists recorded user events
type UserEventService interface {
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[userevent.UserEvent], error)
}

// UserEventHandler serves the user event log to staff
type UserEventHandler struct {
	BaseHandler
	service UserEventService
}

// NewUserEventHandler creates a new UserEventHandler
func NewUserEventHandler(service UserEventService) *UserEventHandler {
	return &UserEventHandler{service: service}
}

// List godoc
// @Summary      List user events
// @Tags         user-events
// @Produce      json
// @Param        adviser_id query string false "Adviser ID"
// @Param        type query string false "Event type"
// @Success      200 {object} shared.Paginated[userevent.UserEvent]
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/user-event [get]
func (h *UserEventHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, uuidParam("adviser_id"), stringParam("type"))
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
