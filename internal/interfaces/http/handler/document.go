package handler

import (
	"context"

	docapp "github.com/datahub/backend/internal/application/document"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentService is the generic document use case surface the handler depends on
type DocumentService interface {
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[docapp.Details], error)
	Get(ctx context.Context, id uuid.UUID) (*docapp.Details, error)
	Create(ctx context.Context, req docapp.CreateRequest, by *uuid.UUID) (*docapp.CreateResult, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string, by *uuid.UUID) (*docapp.Details, error)
	UploadCallback(ctx context.Context, id uuid.UUID) (*docapp.Details, error)
	Download(ctx context.Context, id uuid.UUID) (*docapp.DownloadResult, error)
	Delete(ctx context.Context, id uuid.UUID, by *uuid.UUID) error
}

// DocumentHandler handles generic document endpoints
type DocumentHandler struct {
	BaseHandler
	service DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(service DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// List godoc
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Param        related_object_id query string false "Related object ID"
// @Param        document_type query string false "uploadable or sharepoint"
// @Success      200 {object} shared.Paginated[docapp.Details]
// @Security     BearerAuth
// @Router       /v4/document [get]
func (h *DocumentHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, uuidParam("related_object_id"), stringParam("document_type"))
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
// @Summary      Retrieve a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} docapp.Details
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/document/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	details, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// Create godoc
// @Summary      Create a document
// @Description  Uploadable documents come back with a signed upload URL
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body docapp.CreateRequest true "Document"
// @Success      201 {object} docapp.CreateResult
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/document [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req docapp.CreateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Create(c.Request.Context(), req, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// UpdateTitle godoc
// @Summary      Change the title of a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID"
// @Param        request body dto.TitleRequest true "Title"
// @Success      200 {object} docapp.Details
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/document/{id} [patch]
func (h *DocumentHandler) UpdateTitle(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.TitleRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	details, err := h.service.UpdateTitle(c.Request.Context(), id, req.Title, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// UploadCallback godoc
// @Summary      Notify that the file of a document was uploaded
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} docapp.Details
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/document/{id}/upload-callback [post]
func (h *DocumentHandler) UploadCallback(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	details, err := h.service.UploadCallback(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// Download godoc
// @Summary      Get the download URL of a scanned document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} docapp.DownloadResult
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v4/document/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete a document
// @Tags         documents
// @Param        id path string true "Document ID"
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/document/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, h.CurrentAdviserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
