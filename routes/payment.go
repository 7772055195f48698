package routes

import (
	paymentControllers "github.com/Sahiqur/eshop/controllers/payment"
	"github.com/Sahiqur/eshop/middleware"
	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes registers the gateway redirect callbacks. The gateway
// sends the customer's browser back here, so the JWT middleware still applies
// and the checkout token in the path is the only order correlation accepted.
func SetupPaymentRoutes(r *gin.Engine, payments *paymentControllers.Handler) {
	payment := r.Group("/payment")
	payment.Use(middleware.ValidateToken)
	{
		payment.POST("/success/:token", payments.PaymentSuccess)
		payment.GET("/success/:token", payments.PaymentSuccess)
		payment.POST("/fail/:token", payments.PaymentFail)
		payment.GET("/fail/:token", payments.PaymentFail)
		payment.POST("/cancel/:token", payments.PaymentCancel)
		payment.GET("/cancel/:token", payments.PaymentCancel)
	}
}
