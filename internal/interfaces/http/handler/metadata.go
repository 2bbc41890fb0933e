package handler

import (
	"context"

	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/gin-gonic/gin"
)

// MetadataService lists reference data
type MetadataService interface {
	List(ctx context.Context, kind string) ([]metadata.Item, error)
}

// MetadataHandler serves the reference data used by the clients
type MetadataHandler struct {
	BaseHandler
	service MetadataService
}

// NewMetadataHandler creates a new MetadataHandler
func NewMetadataHandler(service MetadataService) *MetadataHandler {
	return &MetadataHandler{service: service}
}

// List godoc
// @Summary      List reference data of one kind
// @Tags         metadata
// @Produce      json
// @Param        kind path string true "Kind, e.g. sector or country"
// @Success      200 {array} metadata.Item
// @Failure      404 {object} dto.ErrorResponse
// @Router       /v4/metadata/{kind} [get]
func (h *MetadataHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Param("kind"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
