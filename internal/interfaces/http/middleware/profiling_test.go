package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func labelsOf(ctx context.Context) map[string]string {
	labels := map[string]string{}
	pprof.ForLabels(ctx, func(key, value string) bool {
		labels[key] = value
		return true
	})
	return labels
}

func TestProfiling(t *testing.T) {
	var got map[string]string
	router := gin.New()
	router.Use(Profiling(DefaultProfilingConfig()))
	handler := func(c *gin.Context) {
		got = labelsOf(c.Request.Context())
		c.Status(http.StatusOK)
	}
	router.GET("/v4/company/:id", handler)
	router.POST("/v3/search/company", handler)
	router.GET("/ping.xml", handler)
	router.GET("/metrics", handler)
	router.GET("/whoami/", handler)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v4/company/42", nil))
	assert.Equal(t, map[string]string{"api_version": "v4", "method": "GET", "route": "/v4/company/:id"}, got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v3/search/company", nil))
	assert.Equal(t, map[string]string{"api_version": "v3", "method": "POST", "route": "/v3/search/company"}, got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping.xml", nil))
	assert.Equal(t, "none", got["api_version"])

	for _, path := range []string{"/metrics", "/whoami/"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		assert.Empty(t, got, path)
	}
}

func TestProfiling_Disabled(t *testing.T) {
	router := okRouter(Profiling(ProfilingConfig{}))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
