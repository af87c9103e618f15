package payments

import (
	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes registers the gateway callback endpoints. These hang off
// the engine root, not the versioned API group, because the gateway is
// configured with fixed callback paths.
func SetupPaymentRoutes(engine *gin.Engine, controller *Controller) {
	payments := engine.Group("/payments")
	{
		payments.GET("/success", controller.PaymentSuccess)              // GET /payments/success?orderId=xxx
		payments.GET("/fail", controller.PaymentFail)                    // GET /payments/fail?orderId=xxx
		payments.POST("/notifications", controller.PaymentNotifications) // POST /payments/notifications
	}
}
