package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attributes set on every traced API request
const (
	AttrRequestID  = attribute.Key("datahub.request_id")
	AttrAdviserID  = attribute.Key("datahub.adviser_id")
	AttrAPIVersion = attribute.Key("datahub.api_version")
	AttrRecordID   = attribute.Key("datahub.record_id")
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns the otelgin middleware. Scrapes of /metrics are not traced.
func Tracing(cfg TracingConfig, opts ...otelgin.Option) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	opts = append(opts, otelgin.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/metrics"
	}))
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// AnnotateSpan tags the request span with the API version, the record being
// addressed and the acting adviser, and marks 5xx responses as errors. It
// must run after Tracing. The adviser is read once the handler returns, so
// BearerAuth may sit later in the chain.
func AnnotateSpan() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		if id := c.GetString(RequestIDKey); id != "" {
			span.SetAttributes(AttrRequestID.String(id))
		}
		if v := apiVersion(c.FullPath()); v != "" {
			span.SetAttributes(AttrAPIVersion.String(v))
		}
		if id := c.Param("id"); id != "" {
			span.SetAttributes(AttrRecordID.String(id))
		}

		c.Next()

		if id := c.GetString(AdviserIDKey); id != "" {
			span.SetAttributes(AttrAdviserID.String(id))
		}
		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// apiVersion returns "v3" or "v4" for routes under those prefixes
func apiVersion(route string) string {
	for _, v := range []string{"v3", "v4"} {
		if strings.HasPrefix(route, "/"+v+"/") {
			return v
		}
	}
	return ""
}
