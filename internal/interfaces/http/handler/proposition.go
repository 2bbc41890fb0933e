package handler

import (
	"context"

	investmentapp "github.com/datahub/backend/internal/application/investment"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PropositionService is the proposition use case surface the handler depends on
type PropositionService interface {
	List(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (*shared.Paginated[investment.Proposition], error)
	Get(ctx context.Context, projectID, id uuid.UUID) (*investment.Proposition, error)
	Create(ctx context.Context, projectID uuid.UUID, req investmentapp.CreatePropositionRequest, by *uuid.UUID) (*investment.Proposition, error)
	Complete(ctx context.Context, projectID, id uuid.UUID, details string, by *uuid.UUID) (*investment.Proposition, error)
	Abandon(ctx context.Context, projectID, id uuid.UUID, details string, by *uuid.UUID) (*investment.Proposition, error)
}

// PropositionDocumentService is the proposition document use case surface the handler depends on
type PropositionDocumentService interface {
	List(ctx context.Context, projectID, propositionID uuid.UUID, filter shared.Filter) (*shared.Paginated[investmentapp.PropositionDocumentView], error)
	Get(ctx context.Context, projectID, propositionID, id uuid.UUID) (*investmentapp.PropositionDocumentView, error)
	Create(ctx context.Context, projectID, propositionID uuid.UUID, originalFilename string, by *uuid.UUID) (*investmentapp.PropositionDocumentView, error)
	UploadCallback(ctx context.Context, projectID, propositionID, id uuid.UUID) (*investmentapp.PropositionDocumentView, error)
	Download(ctx context.Context, projectID, propositionID, id uuid.UUID) (*investmentapp.PropositionDocumentView, error)
	Delete(ctx context.Context, projectID, propositionID, id uuid.UUID, by uuid.UUID, path string) error
}

// PropositionHandler handles the propositions of investment projects and their documents
type PropositionHandler struct {
	BaseHandler
	propositions PropositionService
	documents    PropositionDocumentService
}

// NewPropositionHandler creates a new PropositionHandler
func NewPropositionHandler(propositions PropositionService, documents PropositionDocumentService) *PropositionHandler {
	return &PropositionHandler{propositions: propositions, documents: documents}
}

// List godoc
// @Summary      List the propositions of a project
// @Tags         propositions
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        adviser_id query string false "Adviser ID"
// @Param        status query string false "ongoing, completed or abandoned"
// @Param        sortby query string false "deadline or created_on, prefix with - for descending"
// @Success      200 {object} shared.Paginated[investment.Proposition]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition [get]
func (h *PropositionHandler) List(c *gin.Context) {
	projectID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c, uuidParam("adviser_id"), stringParam("status"))
	if !ok {
		return
	}
	page, err := h.propositions.List(c.Request.Context(), projectID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// Get godoc
// @Summary      Retrieve a proposition
// @Tags         propositions
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        proposition_pk path string true "Proposition ID"
// @Success      200 {object} investment.Proposition
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition/{proposition_pk} [get]
func (h *PropositionHandler) Get(c *gin.Context) {
	projectID, id, ok := h.propositionIDs(c)
	if !ok {
		return
	}
	p, err := h.propositions.Get(c.Request.Context(), projectID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Create godoc
// @Summary      Create a proposition
// @Tags         propositions
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        request body investmentapp.CreatePropositionRequest true "Proposition"
// @Success      201 {object} investment.Proposition
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition [post]
func (h *PropositionHandler) Create(c *gin.Context) {
	projectID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req investmentapp.CreatePropositionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.propositions.Create(c.Request.Context(), projectID, req, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Complete godoc
// @Summary      Complete a proposition
// @Tags         propositions
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        proposition_pk path string true "Proposition ID"
// @Param        request body dto.DetailsRequest true "Details"
// @Success      200 {object} investment.Proposition
// @Failure      400 {object} shared.ValidationErrors
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition/{proposition_pk}/complete [post]
func (h *PropositionHandler) Complete(c *gin.Context) {
	h.changeStatus(c, h.propositions.Complete)
}

// Abandon godoc
// @Summary      Abandon a proposition
// @Tags         propositions
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        proposition_pk path string true "Proposition ID"
// @Param        request body dto.DetailsRequest true "Details"
// @Success      200 {object} investment.Proposition
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition/{proposition_pk}/abandon [post]
func (h *PropositionHandler) Abandon(c *gin.Context) {
	h.changeStatus(c, h.propositions.Abandon)
}

type statusChange func(ctx context.Context, projectID, id uuid.UUID, details string, by *uuid.UUID) (*investment.Proposition, error)

func (h *PropositionHandler) changeStatus(c *gin.Context, change statusChange) {
	projectID, id, ok := h.propositionIDs(c)
	if !ok {
		return
	}
	var req dto.DetailsRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	p, err := change(c.Request.Context(), projectID, id, req.Details, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ListDocuments godoc
// @Summary      List the documents of a proposition
// @Tags         propositions
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        proposition_pk path string true "Proposition ID"
// @Success      200 {object} shared.Paginated[investmentapp.PropositionDocumentView]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition/{proposition_pk}/document [get]
func (h *PropositionHandler) ListDocuments(c *gin.Context) {
	projectID, propositionID, ok := h.propositionIDs(c)
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}
	page, err := h.documents.List(c.Request.Context(), projectID, propositionID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// GetDocument godoc
// @Summary      Retrieve a proposition document
// @Tags         propositions
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        proposition_pk path string true "Proposition ID"
// @Param        entity_pk path string true "Document ID"
// @Success      200 {object} investmentapp.PropositionDocumentView
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition/{proposition_pk}/document/{entity_pk} [get]
func (h *PropositionHandler) GetDocument(c *gin.Context) {
	h.documentAction(c, h.documents.Get)
}

// CreateDocument godoc
// @Summary      Create a proposition document and get its upload URL
// @Tags         propositions
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        proposition_pk path string true "Proposition ID"
// @Param        request body dto.UploadRequest true "File name"
// @Success      201 {object} investmentapp.PropositionDocumentView
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition/{proposition_pk}/document [post]
func (h *PropositionHandler) CreateDocument(c *gin.Context) {
	projectID, propositionID, ok := h.propositionIDs(c)
	if !ok {
		return
	}
	var req dto.UploadRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	view, err := h.documents.Create(c.Request.Context(), projectID, propositionID, req.OriginalFilename, h.CurrentAdviserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// DocumentUploadCallback godoc
// @Summary      Notify that the file of a proposition document was uploaded
// @Tags         propositions
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        proposition_pk path string true "Proposition ID"
// @Param        entity_pk path string true "Document ID"
// @Success      200 {object} investmentapp.PropositionDocumentView
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition/{proposition_pk}/document/{entity_pk}/upload-callback [post]
func (h *PropositionHandler) DocumentUploadCallback(c *gin.Context) {
	h.documentAction(c, h.documents.UploadCallback)
}

// DownloadDocument godoc
// @Summary      Get the download URL of a scanned proposition document
// @Tags         propositions
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        proposition_pk path string true "Proposition ID"
// @Param        entity_pk path string true "Document ID"
// @Success      200 {object} investmentapp.PropositionDocumentView
// @Failure      400 {object} shared.ValidationErrors
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition/{proposition_pk}/document/{entity_pk}/download [get]
func (h *PropositionHandler) DownloadDocument(c *gin.Context) {
	h.documentAction(c, h.documents.Download)
}

// DeleteDocument godoc
// @Summary      Delete a proposition document
// @Tags         propositions
// @Param        id path string true "Project ID"
// @Param        proposition_pk path string true "Proposition ID"
// @Param        entity_pk path string true "Document ID"
// @Success      204
// @Security     BearerAuth
// @Router       /v3/investment/{id}/proposition/{proposition_pk}/document/{entity_pk} [delete]
func (h *PropositionHandler) DeleteDocument(c *gin.Context) {
	adviserID, ok := h.RequireAdviserID(c)
	if !ok {
		return
	}
	projectID, propositionID, ok := h.propositionIDs(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "entity_pk")
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), projectID, propositionID, id, adviserID, c.Request.URL.Path); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

type documentAction func(ctx context.Context, projectID, propositionID, id uuid.UUID) (*investmentapp.PropositionDocumentView, error)

func (h *PropositionHandler) documentAction(c *gin.Context, action documentAction) {
	projectID, propositionID, ok := h.propositionIDs(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "entity_pk")
	if !ok {
		return
	}
	view, err := action(c.Request.Context(), projectID, propositionID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

func (h *PropositionHandler) propositionIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	projectID, ok := h.PathID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.PathID(c, "proposition_pk")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return projectID, id, true
}
