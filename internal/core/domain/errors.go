// Package domain contains the core business entities for the payments service.
package domain

import "errors"

// Domain errors represent business rule violations and dependency failures.
// Each validation error is a distinct sentinel so a webhook-style caller can
// decide whether to acknowledge the event or raise an operational alert.
var (
	// ErrOrderNotFound is returned when no order with status "created" exists
	// for the requested order id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrPaymentOrderExists is returned when a payment order already exists
	// for the order id. The postgres unique index on order_id owns the
	// concurrent case; this sentinel covers both.
	ErrPaymentOrderExists = errors.New("payment order already exists")

	// ErrPaymentOrderNotFound is returned when a notification references an
	// order id with no payment order.
	ErrPaymentOrderNotFound = errors.New("payment order not found")

	// ErrInvalidTransition is returned when a notification targets a payment
	// order that is no longer pending.
	ErrInvalidTransition = errors.New("payment order is not pending")

	// ErrUnknownNotification is returned for notification states outside
	// FINISHED, CONFIRMATION_REQUIRED and CANCELED.
	ErrUnknownNotification = errors.New("unknown payment notification state")

	// ErrMissingID is returned when a required identifier is absent from the
	// request or notification.
	ErrMissingID = errors.New("required identifier is missing")

	// ErrInvalidOrderItem is returned when a cart item cannot be turned into
	// a QR request line (e.g. non-positive quantity).
	ErrInvalidOrderItem = errors.New("invalid order item")

	// ErrPaymentGatewayError is returned when the payment gateway fails.
	ErrPaymentGatewayError = errors.New("payment gateway error")

	// ErrOrderAPIError is returned when the order microservice fails.
	ErrOrderAPIError = errors.New("error communicating with order service")

	// ErrRepositoryError is returned when the payment order store fails.
	ErrRepositoryError = errors.New("payment order repository error")
)

// PaymentError wraps a domain error with additional context.
type PaymentError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface.
func (e *PaymentError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap allows errors.Is and errors.As to work with PaymentError.
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError with the given error and message.
func NewPaymentError(err error, message, code string) *PaymentError {
	return &PaymentError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}
