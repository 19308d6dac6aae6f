// Package api contains the HTTP handlers and routing for the payments service.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/selforder/payments-service/internal/adapters/mercadopago"
)

// CORSMiddleware handles Cross-Origin Resource Sharing.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware adds a unique request ID to each request.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// WebhookSignatureMiddleware validates Mercado Pago webhook signatures on the
// notifications route. When no webhook secret is configured the check is
// skipped entirely (development mode).
func WebhookSignatureMiddleware(validator *mercadopago.WebhookValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !validator.Enabled() {
			c.Next()
			return
		}

		xSignature := c.GetHeader("x-signature")
		xRequestID := c.GetHeader("x-request-id")
		dataID := c.Query("data.id")

		if !validator.ValidateSignature(xSignature, xRequestID, dataID) {
			logrus.Warnf("rejected webhook with invalid signature, request id %s", xRequestID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Success: false,
				Error:   "invalid webhook signature",
				Code:    "INVALID_SIGNATURE",
			})
			return
		}

		c.Next()
	}
}
