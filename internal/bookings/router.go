package bookings

import (
	"github.com/gin-gonic/gin"

	"ticketly/internal/shared/config"
	"ticketly/internal/shared/middleware"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth(cfg))
	{
		bookings.POST("", controller.CreateBooking)                      // POST /api/v1/bookings
		bookings.GET("", controller.GetUserBookings)                     // GET /api/v1/bookings
		bookings.GET("/:bookingId", controller.GetBooking)               // GET /api/v1/bookings/:bookingId
		bookings.POST("/:bookingId/seats", controller.AddSeat)           // POST /api/v1/bookings/:bookingId/seats
		bookings.POST("/:bookingId/payment", controller.InitiatePayment) // POST /api/v1/bookings/:bookingId/payment
		bookings.POST("/:bookingId/cancel", controller.CancelBooking)    // POST /api/v1/bookings/:bookingId/cancel
	}

	seats := rg.Group("/seats")
	seats.Use(middleware.JWTAuth(cfg))
	{
		seats.DELETE("/:seatId/booking", controller.ReleaseSeat) // DELETE /api/v1/seats/:seatId/booking
	}
}
