package bookings

import (
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes registers the booking lifecycle endpoints. All of
// them require an authenticated user.
func SetupBookingRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	bookingGroup := rg.Group("/bookings")
	bookingGroup.Use(middleware.JWTAuth(cfg))
	{
		bookingGroup.POST("", ctrl.CreateBooking)
		bookingGroup.GET("/:id", ctrl.GetBooking)
		bookingGroup.POST("/:id/payment", ctrl.ConfirmPayment)
		bookingGroup.POST("/:id/cancel", ctrl.CancelBooking)
	}

	ticketsGroup := rg.Group("/my-tickets")
	ticketsGroup.Use(middleware.JWTAuth(cfg))
	{
		ticketsGroup.GET("", ctrl.ListMyBookings)
	}
}
