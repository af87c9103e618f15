// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ticketly/internal/bookings"
	"ticketly/internal/events"
	"ticketly/internal/outbox"
	"ticketly/internal/payments"
	"ticketly/internal/seats"
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/database"
	"ticketly/pkg/cache"
	"ticketly/pkg/logger"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	relay  *outbox.Relay
	logger *logger.Logger

	seatLocks *seats.LockTable
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, relay *outbox.Relay, log *logger.Logger) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		relay:     relay,
		logger:    log,
		seatLocks: seats.NewLockTable(),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	gormDB := r.db.GetPostgreSQL()

	// Shared layers
	cacheService := cache.NewService(r.db.GetRedisClient())

	seatRepo := seats.NewRepository(gormDB)
	seatService := seats.NewService(seatRepo, r.logger)

	eventRepo := events.NewRepository(gormDB)
	eventService := events.NewService(eventRepo, cacheService, r.config.Redis.EventCacheTTL, r.logger)

	paymentGateway := payments.NewGateway(r.config.Payment, r.config.ServiceURL, r.logger)

	bookingRepo := bookings.NewRepository(gormDB, seatRepo)
	bookingService := bookings.NewService(bookingRepo, r.seatLocks, paymentGateway, r.relay, r.logger)

	paymentService := payments.NewService(bookingRepo, bookingService, paymentGateway, r.logger)

	// Gateway callbacks live at the engine root.
	payments.SetupPaymentRoutes(engine, payments.NewController(paymentService))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		events.SetupEventRoutes(api, events.NewController(eventService))
		seats.SetupSeatRoutes(api, seats.NewController(seatService))
		bookings.SetupBookingRoutes(api, bookings.NewController(bookingService), r.config)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ticketly",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ticketly",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}
