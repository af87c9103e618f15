package seats

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ticketly/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetSeat(ctx *gin.Context) {
	seatID, err := strconv.ParseInt(ctx.Param("seatId"), 10, 64)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat ID", nil, err.Error())
		return
	}

	seat, err := c.service.GetSeatByID(ctx.Request.Context(), seatID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seat retrieved successfully", seat.ToResponse())
}

func (c *Controller) GetEventSeats(ctx *gin.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("eventId"), 10, 64)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	seats, err := c.service.ListByEvent(ctx.Request.Context(), eventID, query)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seats retrieved successfully", seats)
}
