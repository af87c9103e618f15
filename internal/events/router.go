package events

import (
	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	events := router.Group("/events")
	{
		events.GET("", controller.GetAllEvents)      // GET /api/v1/events
		events.GET("/:eventId", controller.GetEvent) // GET /api/v1/events/:eventId
	}
}
