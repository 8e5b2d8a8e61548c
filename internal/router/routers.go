package router

import (
	"github.com/gin-gonic/gin"
	"github.com/teamforge/backend/config"
	"github.com/teamforge/backend/internal/handler"
	"github.com/teamforge/backend/internal/middleware"
)

type Router struct {
	authHandler   *handler.AuthHandler
	orgHandler    *handler.OrganizationHandler
	healthHandler *handler.HealthHandler

	jwtMw          *middleware.JWTMiddleware
	rateLimitStore middleware.RateLimitStore
	cfg            *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	org *handler.OrganizationHandler,
	health *handler.HealthHandler,
	jwtMw *middleware.JWTMiddleware,
	rateLimitStore middleware.RateLimitStore,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:   auth,
		orgHandler:    org,
		healthHandler: health,

		jwtMw:          jwtMw,
		rateLimitStore: rateLimitStore,
		cfg:            cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if r.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestContextMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.BasicHealth)
		api.GET("/health/detail", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			r.authRoutes(v1)
			r.organizationRoutes(v1)
		}
	}

	return router
}
