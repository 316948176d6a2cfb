package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maestroai/internal/config"
)

const (
	ServiceName    = "Maestro AI Server"
	ServiceVersion = "0.1.0"
	DocsPath       = "/docs/index.html"
)

// HealthHandler handles health check and service metadata endpoints.
type HealthHandler struct {
	provider *config.ProviderConfig
}

// NewHealthHandler creates a new HealthHandler for the active provider.
func NewHealthHandler(provider *config.ProviderConfig) *HealthHandler {
	return &HealthHandler{provider: provider}
}

// Root handles GET /
// @Summary Service metadata
// @Tags health
// @Produce json
// @Success 200 {object} ServiceInfo
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, ServiceInfo{Service: ServiceName, Version: ServiceVersion, Docs: DocsPath})
}

// Health handles GET /health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.provider == nil || h.provider.APIKey == "" {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "llm api key not configured"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
