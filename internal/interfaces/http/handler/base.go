// Package handler implements the HTTP handlers of the REST API
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/interfaces/http/dto"
	"github.com/datahub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Validation messages for query parameters
const (
	MessageInvalidUUID    = "Must be a valid UUID."
	MessageInvalidBoolean = "Must be a valid boolean."
	MessageExpectedObject = "Expected a JSON object."
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HandleError renders err with the status its kind maps to
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context) {
	h.HandleError(c, shared.ErrNotFound)
}

// BindJSON binds the body into obj and renders binding failures as field errors
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.HandleError(c, middleware.BindingErrors(err))
		return false
	}
	return true
}

// BindData decodes the body into a field map. An empty body is an empty map.
func (h *BaseHandler) BindData(c *gin.Context) (map[string]any, bool) {
	var data map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		h.HandleError(c, shared.NewNonFieldError(MessageExpectedObject))
		return nil, false
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, true
}

// PathID parses a UUID path parameter. Malformed IDs cannot match a record
// and are answered with 404.
func (h *BaseHandler) PathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.NotFound(c)
		return uuid.Nil, false
	}
	return id, true
}

// queryParam is a list filter read from the query string
type queryParam struct {
	name  string
	parse func(string) (any, string)
}

func uuidParam(name string) queryParam {
	return queryParam{name: name, parse: func(s string) (any, string) {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, MessageInvalidUUID
		}
		return id, ""
	}}
}

func boolParam(name string) queryParam {
	return queryParam{name: name, parse: func(s string) (any, string) {
		b, err := strconv.ParseBool(strings.ToLower(s))
		if err != nil {
			return nil, MessageInvalidBoolean
		}
		return b, ""
	}}
}

func stringParam(name string) queryParam {
	return queryParam{name: name, parse: func(s string) (any, string) {
		return s, ""
	}}
}

// bindQuery binds the query string into obj and renders binding failures as field errors
func (h *BaseHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.HandleError(c, middleware.BindingErrors(err))
		return false
	}
	return true
}

// ListFilter reads pagination, ordering and the given filters from the query
func (h *BaseHandler) ListFilter(c *gin.Context, params ...queryParam) (shared.Filter, bool) {
	var req dto.ListRequest
	if !h.bindQuery(c, &req) {
		return shared.Filter{}, false
	}
	filter := req.Filter()

	verrs := shared.NewValidationErrors()
	for _, p := range params {
		raw, ok := c.GetQuery(p.name)
		if !ok || raw == "" {
			continue
		}
		value, msg := p.parse(raw)
		if msg != "" {
			verrs.Add(p.name, msg)
			continue
		}
		filter.Filters[p.name] = value
	}
	if verrs.HasErrors() {
		h.HandleError(c, verrs)
		return shared.Filter{}, false
	}
	return filter, true
}

// CurrentAdviserID returns the ID of the authenticated adviser, or nil
func (h *BaseHandler) CurrentAdviserID(c *gin.Context) *uuid.UUID {
	if a := middleware.GetAdviser(c); a != nil {
		id := a.ID
		return &id
	}
	return nil
}

// RequireAdviserID returns the authenticated adviser's ID, answering 401
// when the request is anonymous
func (h *BaseHandler) RequireAdviserID(c *gin.Context) (uuid.UUID, bool) {
	id := h.CurrentAdviserID(c)
	if id == nil {
		h.HandleError(c, shared.ErrUnauthorized)
		return uuid.Nil, false
	}
	return *id, true
}
