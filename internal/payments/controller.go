package payments

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ticketly/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// PaymentSuccess handles GET /payments/success?orderId=xxx
func (c *Controller) PaymentSuccess(ctx *gin.Context) {
	orderID := ctx.Query("orderId")
	if orderID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "orderId is required", nil, nil)
		return
	}

	c.service.HandleSuccessRedirect(ctx.Request.Context(), orderID)
	response.Success(ctx, http.StatusOK, "Payment result received", nil)
}

// PaymentFail handles GET /payments/fail?orderId=xxx
func (c *Controller) PaymentFail(ctx *gin.Context) {
	orderID := ctx.Query("orderId")
	if orderID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "orderId is required", nil, nil)
		return
	}

	c.service.HandleFailRedirect(ctx.Request.Context(), orderID)
	response.Success(ctx, http.StatusOK, "Payment result received", nil)
}

// PaymentNotifications handles POST /payments/notifications. The gateway
// retries on non-2xx, so even an unreadable payload is acknowledged.
func (c *Controller) PaymentNotifications(ctx *gin.Context) {
	var payload NotificationPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.String(http.StatusOK, "OK")
		return
	}

	c.service.HandleWebhook(ctx.Request.Context(), &payload)
	ctx.String(http.StatusOK, "OK")
}
