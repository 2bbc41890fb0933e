package handler

import (
	"context"

	"github.com/datahub/backend/internal/application/search"
	"github.com/datahub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SearchService runs searches against the search engine
type SearchService interface {
	Search(ctx context.Context, app string, q search.Query) (*search.Result, error)
	BasicSearch(ctx context.Context, entity string, q search.Query) (*search.BasicResult, error)
}

// basicSearchQuery holds the query string of the basic search endpoint
type basicSearchQuery struct {
	Term   string `form:"term"`
	Entity string `form:"entity"`
	Offset int    `form:"offset" binding:"min=0"`
	Limit  int    `form:"limit" binding:"min=0"`
	SortBy string `form:"sortby"`
}

// SearchHandler handles search endpoints
type SearchHandler struct {
	BaseHandler
	service SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(service SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search godoc
// @Summary      Search the records of one app
// @Description  Keys of the body other than original_query, offset, limit and sortby are filters
// @Tags         search
// @Accept       json
// @Produce      json
// @Param        app path string true "company, contact, interaction or investment_project"
// @Param        request body dto.SearchRequest true "Query"
// @Success      200 {object} search.Result
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /v4/search/{app} [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Search(c.Request.Context(), c.Param("app"), search.Query{
		Term:    req.OriginalQuery,
		Filters: req.Filters,
		SortBy:  req.SortBy,
		Offset:  req.Offset,
		Limit:   req.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// BasicSearch godoc
// @Summary      Search every app
// @Description  Returns the matches of entity and the match count of every app
// @Tags         search
// @Produce      json
// @Param        term query string true "Search term"
// @Param        entity query string false "App whose results are returned, company by default"
// @Param        offset query int false "Offset"
// @Param        limit query int false "Limit"
// @Success      200 {object} search.BasicResult
// @Security     BearerAuth
// @Router       /v3/search [get]
func (h *SearchHandler) BasicSearch(c *gin.Context) {
	var q basicSearchQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.service.BasicSearch(c.Request.Context(), q.Entity, search.Query{
		Term:   q.Term,
		SortBy: q.SortBy,
		Offset: q.Offset,
		Limit:  q.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
