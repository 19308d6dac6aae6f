// Package ports defines the interfaces (ports) for the payments service.
// These are contracts that adapters must implement.
package ports

import (
	"context"

	"github.com/selforder/payments-service/internal/core/domain"
)

// OrderGateway exposes the order microservice to the core.
type OrderGateway interface {
	// GetCreatedOrder retrieves an order that is still in status "created".
	// Returns domain.ErrOrderNotFound if no such order exists.
	GetCreatedOrder(ctx context.Context, id string) (*domain.Order, error)

	// GetCartItems retrieves the cart lines of an order.
	GetCartItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)

	// UpdateOrder applies a targeted status/readableId update to an order.
	UpdateOrder(ctx context.Context, params domain.UpdateOrderParams) (*domain.Order, error)

	// GetValidOrderCountToday returns how many valid orders were placed today.
	// Used to assign the next human-facing readable id.
	GetValidOrderCountToday(ctx context.Context) (int, error)
}

// PaymentGateway requests scannable payment codes from the payment provider.
type PaymentGateway interface {
	// CreateQrPayment submits a QR payment request and returns the QR payload
	// with the gateway-confirmed amount.
	CreateQrPayment(ctx context.Context, request domain.CreateQrRequest) (*domain.CreateQrResponse, error)
}

// PaymentOrderRepository persists payment order records.
// Create must enforce uniqueness on OrderID at the store level and return
// domain.ErrPaymentOrderExists to the loser of a concurrent create.
type PaymentOrderRepository interface {
	GetPaymentOrders(ctx context.Context) ([]domain.PaymentOrder, error)

	// GetPaymentOrderByID returns (nil, nil) when no record exists.
	GetPaymentOrderByID(ctx context.Context, id string) (*domain.PaymentOrder, error)

	// GetPaymentOrderByOrderID returns (nil, nil) when no record exists.
	GetPaymentOrderByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error)

	CreatePaymentOrder(ctx context.Context, paymentOrder *domain.PaymentOrder) error

	UpdatePaymentOrder(ctx context.Context, paymentOrder *domain.PaymentOrder) error
}
