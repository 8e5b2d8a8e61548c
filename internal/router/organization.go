package router

import "github.com/gin-gonic/gin"

func (r *Router) organizationRoutes(version *gin.RouterGroup) {
	organizations := version.Group("/organizations")
	{
		// All organization routes require JWT authentication
		organizations.Use(r.jwtMw.RequireAuth())
		{
			// Create organization with caller as owner
			organizations.POST("", r.orgHandler.Create)

			// List organizations the caller belongs to
			organizations.GET("", r.orgHandler.List)

			// Get organization by ID (membership required)
			organizations.GET("/:id", r.orgHandler.Get)

			// Partial update of settings (owner or admin)
			organizations.PATCH("/:id", r.orgHandler.Update)

			// Soft delete (owner only)
			organizations.DELETE("/:id", r.orgHandler.Delete)
		}
	}
}
