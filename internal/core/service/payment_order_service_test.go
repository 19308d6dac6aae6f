package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selforder/payments-service/internal/core/domain"
)

// --- Setup ---

func setupPaymentOrderTest() (*PaymentOrderService, *mockPaymentOrderRepository, *mockPaymentGateway, *mockOrderGateway) {
	repo := newMockPaymentOrderRepository()
	gateway := &mockPaymentGateway{}
	orders := &mockOrderGateway{
		order: &domain.Order{ID: "order-1", Status: domain.OrderCreated, CustomerID: "customer-1"},
		items: []domain.OrderItem{
			{OrderID: "order-1", ProductID: "product-1", Quantity: 2, Value: decimal.RequireFromString("49.99")},
		},
	}
	svc := NewPaymentOrderService(repo, gateway, orders)
	return svc, repo, gateway, orders
}

func pendingPaymentOrder(orderID, value string) domain.PaymentOrder {
	return domain.PaymentOrder{
		ID:      "po-" + orderID,
		OrderID: orderID,
		Status:  domain.PaymentOrderPending,
		Value:   decimal.RequireFromString(value),
		QrData:  "qr-payload",
	}
}

func finishedNotification(orderID, amount string, createdAt time.Time) domain.PaymentNotification {
	return domain.PaymentNotification{
		ID:        "notification-1",
		State:     domain.NotificationFinished,
		Amount:    decimal.RequireFromString(amount),
		CreatedAt: createdAt,
		AdditionalInfo: domain.NotificationAdditionalInfo{
			ExternalReference: orderID,
		},
	}
}

// --- MakePayment ---

func TestMakePayment_Success(t *testing.T) {
	svc, repo, gateway, _ := setupPaymentOrderTest()

	paymentOrder, err := svc.MakePayment(context.Background(), "order-1")

	require.NoError(t, err)
	require.NotNil(t, paymentOrder)
	assert.Equal(t, domain.PaymentOrderPending, paymentOrder.Status)
	assert.Equal(t, "order-1", paymentOrder.OrderID)
	assert.True(t, paymentOrder.Value.Equal(decimal.RequireFromString("49.99")),
		"value should equal the cart total, got %s", paymentOrder.Value)
	assert.NotEmpty(t, paymentOrder.QrData)
	assert.Nil(t, paymentOrder.PaidAt)

	require.NotNil(t, gateway.lastRequest)
	assert.Equal(t, "order-1", gateway.lastRequest.ExternalReference)

	saved := repo.byOrderID("order-1")
	require.NotNil(t, saved)
	assert.Equal(t, paymentOrder.ID, saved.ID)
}

func TestMakePayment_OrderNotFound(t *testing.T) {
	svc, repo, _, orders := setupPaymentOrderTest()
	orders.orderErr = domain.ErrOrderNotFound

	paymentOrder, err := svc.MakePayment(context.Background(), "order-1")

	require.Error(t, err)
	assert.Nil(t, paymentOrder)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Zero(t, repo.createCalls)
}

func TestMakePayment_MissingOrderID(t *testing.T) {
	svc, _, _, _ := setupPaymentOrderTest()

	_, err := svc.MakePayment(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrMissingID)
}

func TestMakePayment_AlreadyExists(t *testing.T) {
	svc, repo, gateway, _ := setupPaymentOrderTest()
	repo.seed(pendingPaymentOrder("order-1", "49.99"))

	_, err := svc.MakePayment(context.Background(), "order-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPaymentOrderExists)
	assert.Zero(t, gateway.calls, "gateway must not be called when a payment order exists")
}

func TestMakePayment_ConcurrentCreateLoser(t *testing.T) {
	// The fast-path check passes, but the store rejects the insert because a
	// concurrent request won the race. The loser sees the same error as the
	// fast path.
	svc, repo, _, _ := setupPaymentOrderTest()
	repo.createErr = domain.ErrPaymentOrderExists

	_, err := svc.MakePayment(context.Background(), "order-1")

	assert.ErrorIs(t, err, domain.ErrPaymentOrderExists)
}

func TestMakePayment_GatewayFailureCreatesNothing(t *testing.T) {
	svc, repo, gateway, _ := setupPaymentOrderTest()
	gateway.err = errors.New("gateway down")

	_, err := svc.MakePayment(context.Background(), "order-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPaymentGatewayError)
	assert.Zero(t, repo.createCalls, "no record may be persisted when the gateway fails")
}

func TestMakePayment_RejectsZeroQuantityItem(t *testing.T) {
	svc, _, gateway, orders := setupPaymentOrderTest()
	orders.items = []domain.OrderItem{
		{OrderID: "order-1", ProductID: "product-1", Quantity: 0, Value: decimal.RequireFromString("10.00")},
	}

	_, err := svc.MakePayment(context.Background(), "order-1")

	assert.ErrorIs(t, err, domain.ErrInvalidOrderItem)
	assert.Zero(t, gateway.calls)
}

// --- ProcessNotification: finalize ---

func TestProcessNotification_FinalizeApprovesPayment(t *testing.T) {
	svc, repo, _, orders := setupPaymentOrderTest()
	repo.seed(pendingPaymentOrder("order-1", "49.99"))
	orders.countToday = 7

	paidAt := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	notification := finishedNotification("order-1", "49.99", paidAt)

	err := svc.ProcessNotification(context.Background(), notification)

	require.NoError(t, err)

	updated := repo.byOrderID("order-1")
	require.NotNil(t, updated)
	assert.Equal(t, domain.PaymentOrderApproved, updated.Status)
	require.NotNil(t, updated.PaidAt)
	assert.True(t, updated.PaidAt.Equal(paidAt))
	assert.True(t, updated.Value.Equal(decimal.RequireFromString("49.99")))

	require.Len(t, orders.updates, 1)
	assert.Equal(t, "order-1", orders.updates[0].ID)
	assert.Equal(t, domain.OrderReceived, orders.updates[0].Status)
	assert.Equal(t, "8", orders.updates[0].ReadableID, "readable id is valid-orders-today + 1")
}

func TestProcessNotification_FinalizeUsesNotificationAmount(t *testing.T) {
	// The gateway-confirmed amount supersedes the originally requested value.
	svc, repo, _, _ := setupPaymentOrderTest()
	repo.seed(pendingPaymentOrder("order-1", "49.99"))

	notification := finishedNotification("order-1", "45.50", time.Now().UTC())

	require.NoError(t, svc.ProcessNotification(context.Background(), notification))

	updated := repo.byOrderID("order-1")
	assert.True(t, updated.Value.Equal(decimal.RequireFromString("45.50")),
		"expected 45.50, got %s", updated.Value)
}

func TestProcessNotification_FinalizeTargetNotFound(t *testing.T) {
	svc, _, _, _ := setupPaymentOrderTest()

	notification := finishedNotification("order-unknown", "49.99", time.Now().UTC())

	err := svc.ProcessNotification(context.Background(), notification)

	assert.ErrorIs(t, err, domain.ErrPaymentOrderNotFound)
}

func TestProcessNotification_FinalizeMissingExternalReference(t *testing.T) {
	svc, _, _, _ := setupPaymentOrderTest()

	notification := finishedNotification("", "49.99", time.Now().UTC())

	err := svc.ProcessNotification(context.Background(), notification)

	assert.ErrorIs(t, err, domain.ErrMissingID)
}

func TestProcessNotification_DuplicateFinalizeRejected(t *testing.T) {
	svc, repo, _, orders := setupPaymentOrderTest()
	repo.seed(pendingPaymentOrder("order-1", "49.99"))
	orders.countToday = 3

	paidAt := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	notification := finishedNotification("order-1", "49.99", paidAt)

	require.NoError(t, svc.ProcessNotification(context.Background(), notification))

	// Replay of the same notification must fail and leave the record untouched.
	err := svc.ProcessNotification(context.Background(), notification)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	var paymentErr *domain.PaymentError
	require.ErrorAs(t, err, &paymentErr)
	assert.Contains(t, paymentErr.Message, string(domain.PaymentOrderApproved),
		"the error must report the current status")

	record := repo.byOrderID("order-1")
	assert.Equal(t, domain.PaymentOrderApproved, record.Status)
	assert.True(t, record.PaidAt.Equal(paidAt))
	assert.Len(t, orders.updates, 1, "the order must not be updated twice")
}

func TestProcessNotification_FinalizeOrderUpdateFailureKeepsApproval(t *testing.T) {
	// An order update failure after the transition is surfaced, but the
	// payment record stays approved. Eventual-consistency boundary.
	svc, repo, _, orders := setupPaymentOrderTest()
	repo.seed(pendingPaymentOrder("order-1", "49.99"))
	orders.updateErr = errors.New("order service down")

	notification := finishedNotification("order-1", "49.99", time.Now().UTC())

	err := svc.ProcessNotification(context.Background(), notification)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOrderAPIError)
	assert.Equal(t, domain.PaymentOrderApproved, repo.byOrderID("order-1").Status)
}

// --- ProcessNotification: cancel ---

func TestProcessNotification_CancelKeepsValueAndPaidAt(t *testing.T) {
	svc, repo, _, orders := setupPaymentOrderTest()
	repo.seed(pendingPaymentOrder("order-1", "49.99"))

	notification := domain.PaymentNotification{
		State:  domain.NotificationCanceled,
		Amount: decimal.RequireFromString("49.99"),
		AdditionalInfo: domain.NotificationAdditionalInfo{
			ExternalReference: "order-1",
		},
	}

	require.NoError(t, svc.ProcessNotification(context.Background(), notification))

	cancelled := repo.byOrderID("order-1")
	assert.Equal(t, domain.PaymentOrderCancelled, cancelled.Status)
	assert.Nil(t, cancelled.PaidAt)
	assert.True(t, cancelled.Value.Equal(decimal.RequireFromString("49.99")),
		"cancel must not change the value")

	require.Len(t, orders.updates, 1)
	assert.Equal(t, domain.OrderCanceled, orders.updates[0].Status)
	assert.Empty(t, orders.updates[0].ReadableID)
}

func TestProcessNotification_CancelOnApprovedRejected(t *testing.T) {
	svc, repo, _, _ := setupPaymentOrderTest()
	paymentOrder := pendingPaymentOrder("order-1", "49.99")
	paymentOrder.Status = domain.PaymentOrderApproved
	repo.seed(paymentOrder)

	notification := domain.PaymentNotification{
		State: domain.NotificationCanceled,
		AdditionalInfo: domain.NotificationAdditionalInfo{
			ExternalReference: "order-1",
		},
	}

	err := svc.ProcessNotification(context.Background(), notification)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.PaymentOrderApproved, repo.byOrderID("order-1").Status,
		"a cancelled notification must not resurrect an approved payment")
}

// --- ProcessNotification: other states ---

func TestProcessNotification_ConfirmationRequiredIsNoOp(t *testing.T) {
	svc, repo, _, orders := setupPaymentOrderTest()
	repo.seed(pendingPaymentOrder("order-1", "49.99"))

	notification := domain.PaymentNotification{
		State: domain.NotificationConfirmationRequired,
		AdditionalInfo: domain.NotificationAdditionalInfo{
			ExternalReference: "order-1",
		},
	}

	require.NoError(t, svc.ProcessNotification(context.Background(), notification))

	assert.Equal(t, domain.PaymentOrderPending, repo.byOrderID("order-1").Status)
	assert.Zero(t, repo.updateCalls)
	assert.Empty(t, orders.updates)
}

func TestProcessNotification_UnknownStateRejected(t *testing.T) {
	svc, repo, _, orders := setupPaymentOrderTest()
	repo.seed(pendingPaymentOrder("order-1", "49.99"))

	notification := domain.PaymentNotification{
		State: "REFUNDED",
		AdditionalInfo: domain.NotificationAdditionalInfo{
			ExternalReference: "order-1",
		},
	}

	err := svc.ProcessNotification(context.Background(), notification)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownNotification)

	var paymentErr *domain.PaymentError
	require.ErrorAs(t, err, &paymentErr)
	assert.Contains(t, paymentErr.Message, "REFUNDED")

	assert.Zero(t, repo.updateCalls)
	assert.Empty(t, orders.updates)
}

// --- Queries ---

func TestGetPaymentOrderByID_NotFoundReturnsNil(t *testing.T) {
	svc, _, _, _ := setupPaymentOrderTest()

	paymentOrder, err := svc.GetPaymentOrderByID(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, paymentOrder)
}

func TestGetPaymentOrders_RepositoryFailure(t *testing.T) {
	svc, repo, _, _ := setupPaymentOrderTest()
	repo.getErr = errors.New("connection refused")

	_, err := svc.GetPaymentOrders(context.Background())

	assert.ErrorIs(t, err, domain.ErrRepositoryError)
}

func TestGetPaymentOrderByOrderID_ReturnsRecord(t *testing.T) {
	svc, repo, _, _ := setupPaymentOrderTest()
	repo.seed(pendingPaymentOrder("order-1", "49.99"))

	paymentOrder, err := svc.GetPaymentOrderByOrderID(context.Background(), "order-1")

	require.NoError(t, err)
	require.NotNil(t, paymentOrder)
	assert.Equal(t, "order-1", paymentOrder.OrderID)
}

// --- Full lifecycle ---

func TestLifecycle_MakeFinalizeReplay(t *testing.T) {
	svc, _, _, orders := setupPaymentOrderTest()
	orders.countToday = 0

	paymentOrder, err := svc.MakePayment(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentOrderPending, paymentOrder.Status)

	notification := finishedNotification("order-1", "49.99", time.Now().UTC())
	require.NoError(t, svc.ProcessNotification(context.Background(), notification))

	finalized, err := svc.GetPaymentOrderByOrderID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentOrderApproved, finalized.Status)

	err = svc.ProcessNotification(context.Background(), notification)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
