// Package postgres implements the PaymentOrderRepository interface on top of
// gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selforder/payments-service/internal/core/domain"
)

// PaymentOrderRepository persists payment orders in postgres. The unique index
// on order_id is the store-level guarantee that at most one payment order
// exists per commercial order, including under concurrent creates.
type PaymentOrderRepository struct {
	db *gorm.DB
}

// NewPaymentOrderRepository creates a new postgres-backed repository.
func NewPaymentOrderRepository(db *gorm.DB) *PaymentOrderRepository {
	return &PaymentOrderRepository{db: db}
}

// GetPaymentOrders lists all payment orders.
func (r *PaymentOrderRepository) GetPaymentOrders(ctx context.Context) ([]domain.PaymentOrder, error) {
	var paymentOrders []domain.PaymentOrder
	if err := r.db.WithContext(ctx).Find(&paymentOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment orders: %w", err)
	}
	return paymentOrders, nil
}

// GetPaymentOrderByID returns the payment order with the given id, or
// (nil, nil) when no record exists.
func (r *PaymentOrderRepository) GetPaymentOrderByID(ctx context.Context, id string) (*domain.PaymentOrder, error) {
	var paymentOrder domain.PaymentOrder
	err := r.db.WithContext(ctx).First(&paymentOrder, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment order %s: %w", id, err)
	}
	return &paymentOrder, nil
}

// GetPaymentOrderByOrderID returns the payment order for the given commercial
// order, or (nil, nil) when no record exists.
func (r *PaymentOrderRepository) GetPaymentOrderByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	var paymentOrder domain.PaymentOrder
	err := r.db.WithContext(ctx).First(&paymentOrder, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment order for order %s: %w", orderID, err)
	}
	return &paymentOrder, nil
}

// CreatePaymentOrder inserts a new payment order, assigning its id. A unique
// violation on order_id is reported as domain.ErrPaymentOrderExists.
func (r *PaymentOrderRepository) CreatePaymentOrder(ctx context.Context, paymentOrder *domain.PaymentOrder) error {
	if paymentOrder.ID == "" {
		paymentOrder.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(paymentOrder).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrPaymentOrderExists
		}
		return fmt.Errorf("failed to create payment order: %w", err)
	}
	return nil
}

// UpdatePaymentOrder persists the current state of a payment order.
func (r *PaymentOrderRepository) UpdatePaymentOrder(ctx context.Context, paymentOrder *domain.PaymentOrder) error {
	if err := r.db.WithContext(ctx).Save(paymentOrder).Error; err != nil {
		return fmt.Errorf("failed to update payment order %s: %w", paymentOrder.ID, err)
	}
	return nil
}
