package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/health"
	"resume-tailor/internal/render"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries everything the router wires together.
type RouterDeps struct {
	Config   config.Config
	Health   *health.Service
	Handlers []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	api := r.Group("/api/v1")

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = &health.Service{}
	}
	healthSvc.RegisterRoutes(api)
	api.GET("/metrics", metrics.Handler())
	api.GET("/templates", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{
			"templates": render.Templates(),
			"default":   render.DefaultTemplateID,
		})
	})

	for _, handler := range deps.Handlers {
		handler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
