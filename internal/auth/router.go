package auth

import "github.com/gin-gonic/gin"

// SetupAuthRoutes registers authentication endpoints on the given group
func SetupAuthRoutes(rg *gin.RouterGroup, ctrl *Controller) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", ctrl.Register)
		authGroup.POST("/login", ctrl.Login)
	}
}
