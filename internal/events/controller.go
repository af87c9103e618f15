package events

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ticketly/internal/shared/utils/response"
)

type Controller interface {
	GetEvent(c *gin.Context)
	GetAllEvents(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	event, err := ctrl.service.FindByID(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Event retrieved successfully", event)
}

func (ctrl *controller) GetAllEvents(c *gin.Context) {
	events, err := ctrl.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Events retrieved successfully", events)
}
