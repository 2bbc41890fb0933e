package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests that matched no route
const unmatchedRoute = "unmatched"

// HTTPObserver records request metrics
type HTTPObserver interface {
	ObserveHTTPRequest(method, route, status string, d time.Duration)
}

// Metrics observes each request under its route pattern so that path
// parameters do not create new series
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		observer.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
