package middleware

import (
	"net/http"

	"github.com/datahub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// MessageTooLarge is returned for bodies over the configured limit
const MessageTooLarge = "Request body is too large."

// BodyLimit caps request bodies at maxBytes. A declared Content-Length over
// the cap gets 413 straight away; chunked bodies fail when the handler reads
// past it.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.Header("Connection", "close")
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Detail: MessageTooLarge})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
