package router

import (
	"github.com/gin-gonic/gin"
	"github.com/teamforge/backend/internal/middleware"
)

func (r *Router) authRoutes(version *gin.RouterGroup) {
	auth := version.Group("/auth")
	{
		// Public routes, rate limited to slow credential stuffing and
		// reset-token probing
		limited := auth.Group("")
		limited.Use(middleware.RateLimit(r.rateLimitStore, r.cfg.RateLimit.Request, r.cfg.RateLimit.Duration))
		{
			limited.POST("/register", r.authHandler.Register)
			limited.POST("/login", r.authHandler.Login)
			limited.POST("/refresh", r.authHandler.RefreshToken)
			limited.POST("/forgot-password", r.authHandler.ForgotPassword)
			limited.POST("/reset-password", r.authHandler.ResetPassword)
		}

		// Protected routes (JWT authentication required)
		protected := auth.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("/logout", r.authHandler.Logout)
			protected.GET("/profile", r.authHandler.Profile)
			protected.PUT("/password", r.authHandler.ChangePassword)
		}
	}
}
