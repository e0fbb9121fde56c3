package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"sawari/internal/handler"
	"sawari/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	VehicleHandler  *handler.VehicleHandler
	TripHandler     *handler.TripHandler
	BookingHandler  *handler.BookingHandler
	EarningsHandler *handler.EarningsHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
	AuthSecret      string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.Default())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes, all authenticated.
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.AuthSecret))
	if deps.RedisClient != nil {
		v1.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}
	{
		v1.GET("/me", deps.EarningsHandler.Me)

		// Vehicle routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", deps.VehicleHandler.Register)
			vehicles.GET("/:registration/seats", deps.VehicleHandler.SeatMap)
			vehicles.POST("/:registration/conductor-seat", deps.VehicleHandler.ReserveConductorSeat)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.Schedule)
			trips.GET("", deps.TripHandler.List)
			trips.GET("/:id", deps.TripHandler.Get)
			trips.POST("/:id/complete", deps.TripHandler.Complete)
			trips.POST("/:id/settle", deps.TripHandler.Settle)
		}

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.Create)
			bookings.GET("", deps.BookingHandler.List)
			bookings.GET("/:id", deps.BookingHandler.Get)
			bookings.PATCH("/:id", deps.BookingHandler.Update)
			bookings.DELETE("/:id", deps.BookingHandler.Delete)
			bookings.GET("/:id/ticket", deps.BookingHandler.Ticket)
			bookings.GET("/:id/ticket.pdf", deps.BookingHandler.TicketPDF)
		}

		// Earnings ledger routes.
		v1.GET("/earnings", deps.EarningsHandler.List)
	}

	return router
}
