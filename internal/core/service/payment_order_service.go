// Package service implements the core business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/selforder/payments-service/internal/core/domain"
	"github.com/selforder/payments-service/internal/core/ports"
)

// PaymentOrderService is the payment order lifecycle engine.
// It enforces the creation guard (one payment order per order) and the
// notification state machine: pending -> approved, pending -> cancelled,
// with approved and cancelled terminal.
type PaymentOrderService struct {
	repo    ports.PaymentOrderRepository
	gateway ports.PaymentGateway
	orders  ports.OrderGateway
	log     *logrus.Entry
}

// NewPaymentOrderService creates a new payment order service with the required
// dependencies.
func NewPaymentOrderService(
	repo ports.PaymentOrderRepository,
	gateway ports.PaymentGateway,
	orders ports.OrderGateway,
) *PaymentOrderService {
	return &PaymentOrderService{
		repo:    repo,
		gateway: gateway,
		orders:  orders,
		log:     logrus.WithField("component", "payment-order-service"),
	}
}

// GetPaymentOrders lists all payment orders.
func (s *PaymentOrderService) GetPaymentOrders(ctx context.Context) ([]domain.PaymentOrder, error) {
	paymentOrders, err := s.repo.GetPaymentOrders(ctx)
	if err != nil {
		return nil, domain.NewPaymentError(domain.ErrRepositoryError,
			"failed to list payment orders", "REPOSITORY_ERROR")
	}
	return paymentOrders, nil
}

// GetPaymentOrderByID returns the payment order with the given id, or nil when
// no such record exists.
func (s *PaymentOrderService) GetPaymentOrderByID(ctx context.Context, id string) (*domain.PaymentOrder, error) {
	paymentOrder, err := s.repo.GetPaymentOrderByID(ctx, id)
	if err != nil {
		return nil, domain.NewPaymentError(domain.ErrRepositoryError,
			"failed to get payment order "+id, "REPOSITORY_ERROR")
	}
	return paymentOrder, nil
}

// GetPaymentOrderByOrderID returns the payment order attached to the given
// commercial order, or nil when no such record exists.
func (s *PaymentOrderService) GetPaymentOrderByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	paymentOrder, err := s.repo.GetPaymentOrderByOrderID(ctx, orderID)
	if err != nil {
		return nil, domain.NewPaymentError(domain.ErrRepositoryError,
			"failed to get payment order for order "+orderID, "REPOSITORY_ERROR")
	}
	return paymentOrder, nil
}

// MakePayment creates a payment order for the given commercial order:
// it verifies the order exists in status "created", verifies no payment order
// exists yet, requests a QR payment from the gateway, and persists the result
// as a pending payment order.
func (s *PaymentOrderService) MakePayment(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	if orderID == "" {
		return nil, domain.NewPaymentError(domain.ErrMissingID,
			"order id is required to make a payment", "MISSING_ORDER_ID")
	}

	s.log.Infof("fetching order %s", orderID)

	order, err := s.orders.GetCreatedOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, domain.NewPaymentError(domain.ErrOrderNotFound,
				fmt.Sprintf("order with id %s not found", orderID), "ORDER_NOT_FOUND")
		}
		return nil, domain.NewPaymentError(domain.ErrOrderAPIError,
			"failed to fetch order "+orderID, "ORDER_API_ERROR")
	}

	// Fast-path uniqueness check; the store's unique index on order_id owns
	// the concurrent case.
	existing, err := s.repo.GetPaymentOrderByOrderID(ctx, orderID)
	if err != nil {
		return nil, domain.NewPaymentError(domain.ErrRepositoryError,
			"failed to check for existing payment order", "REPOSITORY_ERROR")
	}
	if existing != nil {
		return nil, domain.NewPaymentError(domain.ErrPaymentOrderExists,
			fmt.Sprintf("payment order for order %s already exists", orderID), "PAYMENT_ORDER_EXISTS")
	}

	items, err := s.orders.GetCartItems(ctx, orderID)
	if err != nil {
		return nil, domain.NewPaymentError(domain.ErrOrderAPIError,
			"failed to fetch cart items for order "+orderID, "ORDER_API_ERROR")
	}

	request, err := BuildQrRequest(orderID, items, time.Now())
	if err != nil {
		return nil, err
	}

	s.log.Infof("requesting QR payment for order %s, customer %s, total %s",
		orderID, order.CustomerID, request.TotalAmount)

	qr, err := s.gateway.CreateQrPayment(ctx, request)
	if err != nil {
		s.log.Errorf("QR payment request failed for order %s: %v", orderID, err)
		return nil, domain.NewPaymentError(domain.ErrPaymentGatewayError,
			"failed to create QR payment", "GATEWAY_ERROR")
	}

	paymentOrder := &domain.PaymentOrder{
		OrderID: orderID,
		Status:  domain.PaymentOrderPending,
		Value:   qr.Value,
		QrData:  qr.QrData,
	}

	if err := s.repo.CreatePaymentOrder(ctx, paymentOrder); err != nil {
		if errors.Is(err, domain.ErrPaymentOrderExists) {
			// Loser of a concurrent create for the same order.
			return nil, domain.NewPaymentError(domain.ErrPaymentOrderExists,
				fmt.Sprintf("payment order for order %s already exists", orderID), "PAYMENT_ORDER_EXISTS")
		}
		return nil, domain.NewPaymentError(domain.ErrRepositoryError,
			"failed to persist payment order", "REPOSITORY_ERROR")
	}

	s.log.Infof("payment order %s created for order %s", paymentOrder.ID, orderID)

	return paymentOrder, nil
}

// ProcessNotification dispatches a gateway notification to the matching
// transition. CONFIRMATION_REQUIRED is an informational checkpoint and never
// changes state.
func (s *PaymentOrderService) ProcessNotification(ctx context.Context, notification domain.PaymentNotification) error {
	switch notification.State {
	case domain.NotificationFinished:
		return s.finalizePayment(ctx, notification)
	case domain.NotificationConfirmationRequired:
		s.log.Infof("payment confirmation required for order %s",
			notification.AdditionalInfo.ExternalReference)
		return nil
	case domain.NotificationCanceled:
		return s.cancelPayment(ctx, notification)
	default:
		return domain.NewPaymentError(domain.ErrUnknownNotification,
			fmt.Sprintf("invalid payment notification type %s", notification.State),
			"UNKNOWN_NOTIFICATION")
	}
}

// finalizePayment transitions a pending payment order to approved. The
// notification's amount supersedes the originally requested value. After the
// transition the upstream order is marked received with the next readable id;
// a failure there is surfaced but the approved payment order stands.
func (s *PaymentOrderService) finalizePayment(ctx context.Context, notification domain.PaymentNotification) error {
	paymentOrder, err := s.loadPendingPaymentOrder(ctx, notification.AdditionalInfo.ExternalReference)
	if err != nil {
		return err
	}

	paidAt := notification.CreatedAt
	paymentOrder.Status = domain.PaymentOrderApproved
	paymentOrder.PaidAt = &paidAt
	paymentOrder.Value = notification.Amount

	if err := s.repo.UpdatePaymentOrder(ctx, paymentOrder); err != nil {
		return domain.NewPaymentError(domain.ErrRepositoryError,
			"failed to approve payment order "+paymentOrder.ID, "REPOSITORY_ERROR")
	}

	s.log.Infof("payment order %s approved, value %s", paymentOrder.ID, paymentOrder.Value)

	// From here on the payment record is ahead of the order record until the
	// update below succeeds. Not rolled back.
	count, err := s.orders.GetValidOrderCountToday(ctx)
	if err != nil {
		return domain.NewPaymentError(domain.ErrOrderAPIError,
			"payment approved but failed to fetch today's order count", "ORDER_API_ERROR")
	}

	update := domain.UpdateOrderParams{
		ID:         paymentOrder.OrderID,
		Status:     domain.OrderReceived,
		ReadableID: strconv.Itoa(count + 1),
	}

	if _, err := s.orders.UpdateOrder(ctx, update); err != nil {
		s.log.Errorf("payment order %s approved but order update failed: %v", paymentOrder.ID, err)
		return domain.NewPaymentError(domain.ErrOrderAPIError,
			"payment approved but failed to update order "+paymentOrder.OrderID, "ORDER_API_ERROR")
	}

	s.log.Infof("order %s marked received with readable id %s", update.ID, update.ReadableID)

	return nil
}

// cancelPayment transitions a pending payment order to cancelled, leaving
// value and paidAt untouched, then marks the upstream order canceled.
func (s *PaymentOrderService) cancelPayment(ctx context.Context, notification domain.PaymentNotification) error {
	paymentOrder, err := s.loadPendingPaymentOrder(ctx, notification.AdditionalInfo.ExternalReference)
	if err != nil {
		return err
	}

	paymentOrder.Status = domain.PaymentOrderCancelled

	if err := s.repo.UpdatePaymentOrder(ctx, paymentOrder); err != nil {
		return domain.NewPaymentError(domain.ErrRepositoryError,
			"failed to cancel payment order "+paymentOrder.ID, "REPOSITORY_ERROR")
	}

	s.log.Infof("payment order %s cancelled", paymentOrder.ID)

	update := domain.UpdateOrderParams{
		ID:     paymentOrder.OrderID,
		Status: domain.OrderCanceled,
	}

	if _, err := s.orders.UpdateOrder(ctx, update); err != nil {
		s.log.Errorf("payment order %s cancelled but order update failed: %v", paymentOrder.ID, err)
		return domain.NewPaymentError(domain.ErrOrderAPIError,
			"payment cancelled but failed to update order "+paymentOrder.OrderID, "ORDER_API_ERROR")
	}

	return nil
}

// loadPendingPaymentOrder resolves a notification's external reference to a
// payment order that is still pending. Terminal records are reported as
// invalid transitions, not silently ignored: a replayed or out-of-order
// notification is a reportable inconsistency.
func (s *PaymentOrderService) loadPendingPaymentOrder(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	if orderID == "" {
		return nil, domain.NewPaymentError(domain.ErrMissingID,
			"notification carries no external reference", "MISSING_EXTERNAL_REFERENCE")
	}

	paymentOrder, err := s.repo.GetPaymentOrderByOrderID(ctx, orderID)
	if err != nil {
		return nil, domain.NewPaymentError(domain.ErrRepositoryError,
			"failed to get payment order for order "+orderID, "REPOSITORY_ERROR")
	}
	if paymentOrder == nil {
		return nil, domain.NewPaymentError(domain.ErrPaymentOrderNotFound,
			fmt.Sprintf("payment order for order %s not found", orderID), "PAYMENT_ORDER_NOT_FOUND")
	}
	if paymentOrder.Status != domain.PaymentOrderPending {
		return nil, domain.NewPaymentError(domain.ErrInvalidTransition,
			fmt.Sprintf("payment order %s is not pending, current status: %s",
				paymentOrder.ID, paymentOrder.Status),
			"INVALID_TRANSITION")
	}

	return paymentOrder, nil
}
