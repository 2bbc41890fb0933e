package handler

import (
	"context"

	appauth "github.com/datahub/backend/internal/application/auth"
	"github.com/datahub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TokenService issues and revokes access tokens
type TokenService interface {
	Login(ctx context.Context, email, password string) (*appauth.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

// TokenHandler handles password login for deployments without SSO
type TokenHandler struct {
	BaseHandler
	service TokenService
}

// NewTokenHandler creates a new TokenHandler
func NewTokenHandler(service TokenService) *TokenHandler {
	return &TokenHandler{service: service}
}

// Login godoc
// @Summary      Obtain an access token
// @Description  Only available when SSO is disabled
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Credentials"
// @Success      200 {object} appauth.LoginResult
// @Failure      400 {object} shared.ValidationErrors
// @Failure      403 {object} dto.ErrorResponse
// @Router       /token/ [post]
func (h *TokenHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Revoke godoc
// @Summary      Revoke the access token of the request
// @Tags         auth
// @Success      204
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /token/revoke/ [post]
func (h *TokenHandler) Revoke(c *gin.Context) {
	token, err := appauth.ParseAuthorizationHeader(c.GetHeader("Authorization"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
