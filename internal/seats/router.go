package seats

import "github.com/gin-gonic/gin"

// SetupSeatRoutes registers the public seat availability endpoint.
func SetupSeatRoutes(rg *gin.RouterGroup, ctrl *Controller) {
	rg.GET("/screenings/:id/seats", ctrl.GetAvailability)
}
