// Package api contains the HTTP handlers and routing for the payments service.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/selforder/payments-service/internal/core/domain"
	"github.com/selforder/payments-service/internal/core/service"
)

// Handler contains the HTTP handlers for the payment orders API.
type Handler struct {
	paymentOrders *service.PaymentOrderService
}

// NewHandler creates a new API handler with the payment order service.
func NewHandler(paymentOrders *service.PaymentOrderService) *Handler {
	return &Handler{
		paymentOrders: paymentOrders,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// GetPaymentOrders handles GET /payment-orders
func (h *Handler) GetPaymentOrders(c *gin.Context) {
	paymentOrders, err := h.paymentOrders.GetPaymentOrders(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentOrders)
}

// GetPaymentOrderByID handles GET /payment-orders/:id
func (h *Handler) GetPaymentOrderByID(c *gin.Context) {
	id := c.Param("id")

	paymentOrder, err := h.paymentOrders.GetPaymentOrderByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if paymentOrder == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Success: false,
			Error:   "payment order not found",
			Code:    "PAYMENT_ORDER_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, paymentOrder)
}

// GetPaymentOrderByOrderID handles GET /payment-orders/orders/:orderId
func (h *Handler) GetPaymentOrderByOrderID(c *gin.Context) {
	orderID := c.Param("orderId")

	paymentOrder, err := h.paymentOrders.GetPaymentOrderByOrderID(c.Request.Context(), orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if paymentOrder == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Success: false,
			Error:   "payment order not found for order " + orderID,
			Code:    "PAYMENT_ORDER_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, paymentOrder)
}

// MakePayment handles POST /payment-orders/make-payment/:orderId
// Creates the payment order and returns it with its QR payload.
func (h *Handler) MakePayment(c *gin.Context) {
	orderID := c.Param("orderId")

	paymentOrder, err := h.paymentOrders.MakePayment(c.Request.Context(), orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentOrder)
}

// ProcessNotification handles POST /payment-orders/process-payment-notifications
// Receives payment state notifications from Mercado Pago.
func (h *Handler) ProcessNotification(c *gin.Context) {
	var notification domain.PaymentNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "invalid notification body: " + err.Error(),
			Code:    "VALIDATION_ERROR",
		})
		return
	}

	if err := h.paymentOrders.ProcessNotification(c.Request.Context(), notification); err != nil {
		logrus.Errorf("notification processing failed for order %s: %v",
			notification.AdditionalInfo.ExternalReference, err)
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "payments-service",
	})
}

// handleServiceError maps domain errors to HTTP responses. Validation errors
// stay in the 400 range so a webhook caller can tell an invariant violation
// apart from an operational failure.
func handleServiceError(c *gin.Context, err error) {
	var paymentErr *domain.PaymentError
	if errors.As(err, &paymentErr) {
		statusCode := http.StatusInternalServerError

		switch {
		case errors.Is(paymentErr.Err, domain.ErrOrderNotFound),
			errors.Is(paymentErr.Err, domain.ErrPaymentOrderNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(paymentErr.Err, domain.ErrPaymentOrderExists),
			errors.Is(paymentErr.Err, domain.ErrInvalidTransition):
			statusCode = http.StatusConflict
		case errors.Is(paymentErr.Err, domain.ErrUnknownNotification),
			errors.Is(paymentErr.Err, domain.ErrMissingID):
			statusCode = http.StatusBadRequest
		case errors.Is(paymentErr.Err, domain.ErrInvalidOrderItem):
			statusCode = http.StatusUnprocessableEntity
		case errors.Is(paymentErr.Err, domain.ErrPaymentGatewayError):
			statusCode = http.StatusBadGateway
		}

		c.JSON(statusCode, ErrorResponse{
			Success: false,
			Error:   paymentErr.Message,
			Code:    paymentErr.Code,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   "internal server error",
		Code:    "INTERNAL_ERROR",
	})
}
