package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips metrics scrapes, the whoami check and the
// API docs.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/metrics", "/whoami/"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// Profiling tags CPU samples taken while an API request is handled with the
// API version, route pattern and method, so Pyroscope can split profiles
// per endpoint. Unmatched paths are not tagged.
func Profiling(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		route := c.FullPath()
		if skip[path] || route == "" || hasAnyPrefix(path, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}

		api := apiVersion(route)
		if api == "" {
			api = "none"
		}
		labels := pyroscope.Labels("api_version", api, "route", route, "method", c.Request.Method)
		pyroscope.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
