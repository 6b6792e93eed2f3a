package routes

import (
	"net/http"
	"time"

	"cinebook/internal/auth"
	"cinebook/internal/bookings"
	"cinebook/internal/notifications"
	"cinebook/internal/payments"
	"cinebook/internal/screenings"
	"cinebook/internal/seats"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/database"
	"cinebook/pkg/cache"
	"cinebook/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router wires every feature package and holds the services the server
// needs outside the HTTP path (ledger restore, expiry sweeping).
type Router struct {
	config    *config.Config
	db        *database.DB
	ledger    *seats.Ledger
	publisher notifications.Publisher

	seatService    seats.Service
	bookingService bookings.Service
}

func NewRouter(cfg *config.Config, db *database.DB, ledger *seats.Ledger, publisher notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		ledger:    ledger,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	appLogger := logger.GetDefault()
	cacheService := cache.NewService(r.db.GetRedis())

	seatRepo := seats.NewRepository(r.db.GetPostgreSQL())
	r.seatService = seats.NewService(seatRepo, r.ledger, cacheService, r.config.Redis.AvailabilityTTL, appLogger.Logger)

	screeningRepo := screenings.NewRepository(r.db.GetPostgreSQL())
	screeningService := screenings.NewService(screeningRepo, r.seatService, cacheService, r.config.Redis.CacheTTL, appLogger.Logger)

	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	r.bookingService = bookings.NewService(
		bookingRepo,
		r.ledger,
		seatRepo,
		screeningService,
		payments.NewSimulatedGateway(),
		r.publisher,
		bookings.Config{
			HoldTTL:            r.config.Booking.HoldTTL,
			MaxSeatsPerBooking: r.config.Booking.MaxSeatsPerBooking,
		},
		appLogger.Logger,
	)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		authRepo := auth.NewRepository(r.db.GetPostgreSQL())
		authService := auth.NewService(authRepo, r.config)
		auth.SetupAuthRoutes(api, auth.NewController(authService))

		screenings.SetupScreeningRoutes(api, screenings.NewController(screeningService), r.config)
		seats.SetupSeatRoutes(api, seats.NewController(r.seatService))
		bookings.SetupBookingRoutes(api, bookings.NewController(r.bookingService), r.config)
	}
}

// SeatService is available after SetupRoutes.
func (r *Router) SeatService() seats.Service {
	return r.seatService
}

// BookingService is available after SetupRoutes.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cinebook-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "cinebook-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}
