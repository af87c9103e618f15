package seats

import (
	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {
	seats := rg.Group("/seats")
	{
		seats.GET("/:seatId", controller.GetSeat) // GET /api/v1/seats/:seatId
	}

	events := rg.Group("/events")
	{
		events.GET("/:eventId/seats", controller.GetEventSeats) // GET /api/v1/events/:eventId/seats?page=&pageSize=&row=&status=
	}
}
