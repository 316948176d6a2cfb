package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "maestroai/docs" // registers the OpenAPI document served under /docs
	"maestroai/internal/config"
	"maestroai/internal/handler"
	"maestroai/internal/metrics"
	"maestroai/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Health  *handler.HealthHandler
	Defect  *handler.DefectHandler
	Extract *handler.ExtractHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, logger zerolog.Logger, h Handlers) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORS))

	// Metadata, health checks and docs
	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Health)
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Capability routes - require a bearer token unless auth is disabled
	v2 := r.Group("/v2")
	v2.Use(middleware.BearerAuth(cfg.Auth))
	v2.POST("/find-defects", h.Defect.FindDefects)
	v2.POST("/extract-text", h.Extract.ExtractText)

	return r
}
