package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func tracedRouter(t *testing.T, status int) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing(TracingConfig{ServiceName: "datahub-test", Enabled: true}, otelgin.WithTracerProvider(tp)))
	router.Use(func(c *gin.Context) {
		c.Set(AdviserIDKey, "8b1d2c1e-7b45-4d1b-9a43-0f2d0c7ab001")
		c.Next()
	})
	router.Use(AnnotateSpan())
	router.GET("/v4/company/:id", func(c *gin.Context) { c.Status(status) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router, sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) string {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestTracing(t *testing.T) {
	t.Run("records request, record and adviser", func(t *testing.T) {
		router, sr := tracedRouter(t, http.StatusOK)
		req := httptest.NewRequest(http.MethodGet, "/v4/company/0f6c2a4e-5b1d-4c3a-9e2f-7d8b9a0c1e2f", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		router.ServeHTTP(httptest.NewRecorder(), req)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "req-1", spanAttr(spans[0], AttrRequestID))
		assert.Equal(t, "v4", spanAttr(spans[0], AttrAPIVersion))
		assert.Equal(t, "0f6c2a4e-5b1d-4c3a-9e2f-7d8b9a0c1e2f", spanAttr(spans[0], AttrRecordID))
		assert.Equal(t, "8b1d2c1e-7b45-4d1b-9a43-0f2d0c7ab001", spanAttr(spans[0], AttrAdviserID))
	})

	t.Run("marks server errors", func(t *testing.T) {
		router, sr := tracedRouter(t, http.StatusServiceUnavailable)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v4/company/1", nil))

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("skips metrics scrapes", func(t *testing.T) {
		router, sr := tracedRouter(t, http.StatusOK)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Empty(t, sr.Ended())
	})

	t.Run("client errors are not span errors", func(t *testing.T) {
		router, sr := tracedRouter(t, http.StatusNotFound)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v4/company/1", nil))

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("disabled", func(t *testing.T) {
		router := okRouter(Tracing(TracingConfig{Enabled: false}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAPIVersion(t *testing.T) {
	for route, want := range map[string]string{
		"/v3/interaction/:id":   "v3",
		"/v4/company/:id":       "v4",
		"/v4":                   "",
		"/whoami/":              "",
		"/v5/company/:id":       "",
		"/admin/v4/company/:id": "",
	} {
		assert.Equal(t, want, apiVersion(route), route)
	}
}
