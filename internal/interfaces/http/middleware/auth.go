package middleware

import (
	"context"
	"net/http"

	appauth "github.com/datahub/backend/internal/application/auth"
	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/infrastructure/logger"
	"github.com/datahub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gin context keys set by BearerAuth
const (
	AdviserKey   = "adviser"
	AdviserIDKey = "adviser_id"
)

// MessageStaffOnly is returned to advisers without staff access
const MessageStaffOnly = "You do not have permission to perform this action."

// Authenticator resolves the adviser owning a bearer token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*adviser.Adviser, error)
}

// BearerAuth authenticates requests from their Authorization header and
// stores the adviser in the gin context
func BearerAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := appauth.ParseAuthorizationHeader(c.GetHeader("Authorization"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		a, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		id := a.ID.String()
		c.Set(AdviserKey, a)
		c.Set(AdviserIDKey, id)
		ctx, l := logger.WithAdviserID(c.Request.Context(), logger.GetGinLogger(c), id)
		c.Set("logger", l)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireStaff rejects advisers who are not staff. It must run after BearerAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		a := GetAdviser(c)
		if a == nil {
			AbortWithError(c, shared.ErrUnauthorized)
			return
		}
		if !a.IsStaff {
			AbortWithError(c, shared.NewForbiddenError(MessageStaffOnly))
			return
		}
		c.Next()
	}
}

// GetAdviser returns the authenticated adviser, or nil
func GetAdviser(c *gin.Context) *adviser.Adviser {
	if v, ok := c.Get(AdviserKey); ok {
		if a, ok := v.(*adviser.Adviser); ok {
			return a
		}
	}
	return nil
}

// AbortWithError renders err and stops the chain. Server errors are logged.
func AbortWithError(c *gin.Context, err error) {
	status, body := dto.ErrorBody(err)
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", dto.WWWAuthenticate)
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}
