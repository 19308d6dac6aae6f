// Package api contains the HTTP handlers and routing for the payments service.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/selforder/payments-service/internal/adapters/mercadopago"
)

// SetupRouter configures the Gin router with all routes and middleware.
func SetupRouter(handler *Handler, validator *mercadopago.WebhookValidator, ginMode string) *gin.Engine {
	gin.SetMode(ginMode)

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())
	router.Use(RequestIDMiddleware())

	router.GET("/health", handler.Health)

	paymentOrders := router.Group("/payment-orders")
	{
		paymentOrders.GET("", handler.GetPaymentOrders)
		paymentOrders.GET("/:id", handler.GetPaymentOrderByID)
		paymentOrders.GET("/orders/:orderId", handler.GetPaymentOrderByOrderID)
		paymentOrders.POST("/make-payment/:orderId", handler.MakePayment)

		// Called by Mercado Pago; authenticated by signature, not JWT.
		paymentOrders.POST("/process-payment-notifications",
			WebhookSignatureMiddleware(validator), handler.ProcessNotification)
	}

	return router
}
