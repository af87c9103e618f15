package bookings

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ticketly/internal/shared/middleware"
	"ticketly/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), userID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Booking created successfully", booking)
}

// GetBooking handles GET /api/v1/bookings/:bookingId
func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	bookingID, err := strconv.ParseInt(ctx.Param("bookingId"), 10, 64)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", booking)
}

// GetUserBookings handles GET /api/v1/bookings
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	bookings, err := c.service.GetUserBookings(ctx.Request.Context(), userID, query)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", bookings)
}

// AddSeat handles POST /api/v1/bookings/:bookingId/seats
func (c *Controller) AddSeat(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	bookingID, err := strconv.ParseInt(ctx.Param("bookingId"), 10, 64)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	var req AddSeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.AddSeat(ctx.Request.Context(), userID, bookingID, req.SeatID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seat added to booking", booking)
}

// ReleaseSeat handles DELETE /api/v1/seats/:seatId/booking
func (c *Controller) ReleaseSeat(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	seatID, err := strconv.ParseInt(ctx.Param("seatId"), 10, 64)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat ID", nil, err.Error())
		return
	}

	if err := c.service.ReleaseSeat(ctx.Request.Context(), userID, seatID); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seat released", nil)
}

// InitiatePayment handles POST /api/v1/bookings/:bookingId/payment
func (c *Controller) InitiatePayment(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	bookingID, err := strconv.ParseInt(ctx.Param("bookingId"), 10, 64)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	redirect, err := c.service.InitiatePayment(ctx.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Payment initiated", redirect)
}

// CancelBooking handles POST /api/v1/bookings/:bookingId/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	bookingID, err := strconv.ParseInt(ctx.Param("bookingId"), 10, 64)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	if err := c.service.CancelBooking(ctx.Request.Context(), userID, bookingID); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Booking cancelled", nil)
}
