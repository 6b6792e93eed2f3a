package screenings

import (
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupScreeningRoutes registers catalog endpoints. Browsing is public,
// mutations require an admin token.
func SetupScreeningRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	screeningGroup := rg.Group("/screenings")
	{
		screeningGroup.GET("", ctrl.ListScreenings)
		screeningGroup.GET("/:id", ctrl.GetScreening)

		adminGroup := screeningGroup.Group("")
		adminGroup.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
		{
			adminGroup.POST("", ctrl.CreateScreening)
			adminGroup.POST("/:id/cancel", ctrl.CancelScreening)
		}
	}

	auditoriumGroup := rg.Group("/auditoriums")
	{
		auditoriumGroup.GET("", ctrl.ListAuditoriums)

		adminGroup := auditoriumGroup.Group("")
		adminGroup.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
		{
			adminGroup.POST("", ctrl.CreateAuditorium)
		}
	}
}
