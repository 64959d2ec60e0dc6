// Package routes defines HTTP routes for the job board service.
package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kaojob/jobboard-service/docs"
	"github.com/kaojob/jobboard-service/internal/config"
	"github.com/kaojob/jobboard-service/internal/handlers"
	"github.com/kaojob/jobboard-service/internal/httputil"
	"github.com/kaojob/jobboard-service/internal/metrics"
	"github.com/kaojob/jobboard-service/internal/middleware"
	"github.com/kaojob/jobboard-service/internal/service"
)

// Dependencies groups what Setup mounts.
type Dependencies struct {
	Auth      *handlers.AuthHandler
	Jobs      *handlers.JobHandler
	Health    *handlers.HealthHandler
	Tokens    middleware.TokenValidator
	Responder *httputil.Responder
	Metrics   *metrics.Metrics
}

// Setup configures all HTTP routes for the application.
func Setup(router *gin.Engine, deps Dependencies, cfg *config.Config) {
	router.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.AllowedOrigins}))

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	gate := middleware.Auth(deps.Tokens, deps.Responder)

	api := router.Group("/api")
	{
		api.GET("/health", deps.Health.Check)

		api.POST("/register", deps.Auth.Register)
		api.POST("/login", deps.Auth.Login)
		api.GET("/me", gate, deps.Auth.Me)

		api.GET("/jobs", deps.Jobs.List)
		api.GET("/jobs/:id", deps.Jobs.Get)
		api.POST("/jobs", gate, deps.Jobs.Create)
		api.DELETE("/jobs/:id", gate, deps.Jobs.Delete)
	}

	// Swagger documentation (only if SWAGGER_HOST is configured)
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.NoRoute(noRoute(cfg.StaticDir, deps.Responder))
}

// noRoute serves the frontend from staticDir for GET requests outside /api,
// falling back to index.html for client-side routes. Everything else is a
// JSON not_found.
func noRoute(staticDir string, responder *httputil.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		isRead := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
		if staticDir == "" || !isRead || path == "/api" || strings.HasPrefix(path, "/api/") {
			responder.Error(c, service.ErrNotFound)
			return
		}

		// Clean against "/" first so the result cannot climb out of staticDir.
		file := filepath.Join(staticDir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}

		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			c.File(index)
			return
		}
		responder.Error(c, service.ErrNotFound)
	}
}
