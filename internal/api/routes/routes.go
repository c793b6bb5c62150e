package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/notehub/notehub/internal/api/handlers"
	"github.com/notehub/notehub/internal/api/middleware"
)

type Deps struct {
	Profile  *handlers.ProfileHandler
	Resource *handlers.ResourceHandler
	Review   *handlers.ReviewHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	api := r.Group("/api")
	api.Use(middleware.JWTAuth())

	api.GET("/profile", d.Profile.Get)
	api.POST("/profile", d.Profile.Create)
	api.PUT("/profile", d.Profile.Update)
	api.DELETE("/profile", d.Profile.Delete)

	api.POST("/resources", d.Resource.Upload)
	api.GET("/resources/browse", d.Resource.Browse)
	api.GET("/resources/my-resources", d.Resource.MyResources)
	api.GET("/resources/view/:id", d.Resource.View)
	api.GET("/resources/download/:id", d.Resource.Download)
	api.GET("/resources/:id", d.Resource.Get)
	api.PUT("/resources/:id", d.Resource.Update)
	api.DELETE("/resources/:id", d.Resource.Delete)

	api.GET("/resources/:id/reviews", d.Review.List)
	api.POST("/resources/:id/reviews", d.Review.Submit)
}
