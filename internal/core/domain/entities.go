// Package domain contains the core business entities for the payments service.
// This is the innermost layer of the Clean Architecture - it has no dependencies on
// external frameworks or infrastructure.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentOrderStatus is the lifecycle state of a payment order.
type PaymentOrderStatus string

const (
	// PaymentOrderPending is the initial state of every payment order.
	PaymentOrderPending PaymentOrderStatus = "pending"

	// PaymentOrderApproved is the terminal state reached on a confirmed payment.
	PaymentOrderApproved PaymentOrderStatus = "approved"

	// PaymentOrderCancelled is the terminal state reached on a cancelled payment.
	PaymentOrderCancelled PaymentOrderStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s PaymentOrderStatus) Terminal() bool {
	return s == PaymentOrderApproved || s == PaymentOrderCancelled
}

// PaymentOrder is the authoritative payment record for one commercial order.
// OrderID is unique: at most one payment order exists per order.
type PaymentOrder struct {
	ID        string             `json:"id" gorm:"primaryKey;type:uuid"`
	OrderID   string             `json:"orderId" gorm:"uniqueIndex;not null"`
	Status    PaymentOrderStatus `json:"status" gorm:"not null"`
	Value     decimal.Decimal    `json:"value" gorm:"type:numeric(10,2)"`
	QrData    string             `json:"qrData"`
	PaidAt    *time.Time         `json:"paidAt"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// OrderStatus is the status of the upstream commercial order.
type OrderStatus string

const (
	OrderCreated  OrderStatus = "created"
	OrderReceived OrderStatus = "received"
	OrderCanceled OrderStatus = "canceled"
)

// Order is the commercial order as exposed by the order microservice.
// It is owned by the order system; this service only applies targeted
// status/readableId updates, never a full overwrite.
type Order struct {
	ID         string      `json:"id"`
	Status     OrderStatus `json:"status"`
	ReadableID string      `json:"readableId"`
	CustomerID string      `json:"customerId"`
}

// OrderItem is one cart line of an order. Value is the line total, not the
// unit price.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Value     decimal.Decimal `json:"value"`
}

// UpdateOrderParams is a targeted update pushed to the order microservice.
type UpdateOrderParams struct {
	ID         string      `json:"id"`
	Status     OrderStatus `json:"status"`
	ReadableID string      `json:"readableId,omitempty"`
}

// QrRequestItem is one line entry of a QR payment request.
type QrRequestItem struct {
	Title       string          `json:"title"`
	Quantity    int             `json:"quantity"`
	UnitMeasure string          `json:"unitMeasure"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// CreateQrRequest is the gateway-agnostic request for a scannable payment code.
type CreateQrRequest struct {
	ExternalReference string          `json:"externalReference"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	ExpirationDate    time.Time       `json:"expirationDate"`
	Items             []QrRequestItem `json:"items"`
}

// CreateQrResponse is the gateway's answer: the QR payload plus the amount the
// gateway confirmed for it.
type CreateQrResponse struct {
	QrData string          `json:"qrData"`
	Value  decimal.Decimal `json:"value"`
}

// Payment notification states sent by the payment gateway.
const (
	NotificationFinished             = "FINISHED"
	NotificationConfirmationRequired = "CONFIRMATION_REQUIRED"
	NotificationCanceled             = "CANCELED"
)

// NotificationAdditionalInfo carries the correlation key of a notification.
type NotificationAdditionalInfo struct {
	// ExternalReference equals the commercial order id the payment was
	// requested for.
	ExternalReference string `json:"external_reference"`
}

// PaymentNotification is the inbound webhook event from the payment gateway.
// It is untrusted input and never persisted verbatim; the engine extracts only
// State, Amount, CreatedAt and the external reference.
type PaymentNotification struct {
	ID             string                     `json:"id"`
	State          string                     `json:"state"`
	Amount         decimal.Decimal            `json:"amount"`
	CallerID       int64                      `json:"caller_id"`
	ClientID       int64                      `json:"client_id"`
	CreatedAt      time.Time                  `json:"created_at"`
	Payment        *NotificationPayment       `json:"payment,omitempty"`
	AdditionalInfo NotificationAdditionalInfo `json:"additional_info"`
}

// NotificationPayment is the optional payment detail block of a notification.
type NotificationPayment struct {
	ID    int64  `json:"id"`
	State string `json:"state"`
	Type  string `json:"type"`
}
