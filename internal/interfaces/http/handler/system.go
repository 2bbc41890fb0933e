package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// SystemHandler handles system endpoints
type SystemHandler struct {
	BaseHandler
	version   string
	startTime time.Time
	checks    map[string]HealthCheck
	timeout   time.Duration
}

// NewSystemHandler creates a new SystemHandler. checks are run by the health endpoint.
func NewSystemHandler(version string, checks map[string]HealthCheck) *SystemHandler {
	return &SystemHandler{
		version:   version,
		startTime: time.Now(),
		checks:    checks,
		timeout:   3 * time.Second,
	}
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status  string            `json:"status" example:"OK"`
	Version string            `json:"version" example:"1.0.0"`
	Uptime  string            `json:"uptime" example:"1h30m45s"`
	Checks  map[string]string `json:"checks"`
}

// Health godoc
// @Summary      Check the service and its dependencies
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:  "OK",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Checks:  make(map[string]string, len(h.checks)),
	}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "FAIL"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "OK"
	}
	c.JSON(status, resp)
}

// PingResponse is the body of the ping endpoint
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
}

// Ping godoc
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} PingResponse
// @Router       /ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong", GoVersion: runtime.Version()})
}
