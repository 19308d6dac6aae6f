package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/selforder/payments-service/internal/core/domain"
)

// mockPaymentOrderRepository is an in-memory PaymentOrderRepository keyed by
// order id. Reads hand out copies so state only changes through updates, like
// a real store.
type mockPaymentOrderRepository struct {
	records map[string]*domain.PaymentOrder

	getErr    error
	createErr error
	updateErr error

	createCalls int
	updateCalls int
}

func newMockPaymentOrderRepository() *mockPaymentOrderRepository {
	return &mockPaymentOrderRepository{
		records: make(map[string]*domain.PaymentOrder),
	}
}

func (m *mockPaymentOrderRepository) seed(paymentOrder domain.PaymentOrder) {
	if paymentOrder.ID == "" {
		paymentOrder.ID = uuid.NewString()
	}
	m.records[paymentOrder.OrderID] = &paymentOrder
}

func (m *mockPaymentOrderRepository) byOrderID(orderID string) *domain.PaymentOrder {
	return m.records[orderID]
}

func (m *mockPaymentOrderRepository) GetPaymentOrders(ctx context.Context) ([]domain.PaymentOrder, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	paymentOrders := make([]domain.PaymentOrder, 0, len(m.records))
	for _, record := range m.records {
		paymentOrders = append(paymentOrders, *record)
	}
	return paymentOrders, nil
}

func (m *mockPaymentOrderRepository) GetPaymentOrderByID(ctx context.Context, id string) (*domain.PaymentOrder, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, record := range m.records {
		if record.ID == id {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockPaymentOrderRepository) GetPaymentOrderByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	record, ok := m.records[orderID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (m *mockPaymentOrderRepository) CreatePaymentOrder(ctx context.Context, paymentOrder *domain.PaymentOrder) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.records[paymentOrder.OrderID]; ok {
		return domain.ErrPaymentOrderExists
	}
	if paymentOrder.ID == "" {
		paymentOrder.ID = uuid.NewString()
	}
	copied := *paymentOrder
	m.records[paymentOrder.OrderID] = &copied
	return nil
}

func (m *mockPaymentOrderRepository) UpdatePaymentOrder(ctx context.Context, paymentOrder *domain.PaymentOrder) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *paymentOrder
	m.records[paymentOrder.OrderID] = &copied
	return nil
}

// mockOrderGateway fakes the order microservice.
type mockOrderGateway struct {
	order      *domain.Order
	items      []domain.OrderItem
	countToday int

	orderErr  error
	itemsErr  error
	updateErr error
	countErr  error

	updates []domain.UpdateOrderParams
}

func (m *mockOrderGateway) GetCreatedOrder(ctx context.Context, id string) (*domain.Order, error) {
	if m.orderErr != nil {
		return nil, m.orderErr
	}
	return m.order, nil
}

func (m *mockOrderGateway) GetCartItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return m.items, nil
}

func (m *mockOrderGateway) UpdateOrder(ctx context.Context, params domain.UpdateOrderParams) (*domain.Order, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updates = append(m.updates, params)
	return &domain.Order{ID: params.ID, Status: params.Status, ReadableID: params.ReadableID}, nil
}

func (m *mockOrderGateway) GetValidOrderCountToday(ctx context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.countToday, nil
}

// mockPaymentGateway fakes the QR payment provider.
type mockPaymentGateway struct {
	response *domain.CreateQrResponse
	err      error

	lastRequest *domain.CreateQrRequest
	calls       int
}

func (m *mockPaymentGateway) CreateQrPayment(ctx context.Context, request domain.CreateQrRequest) (*domain.CreateQrResponse, error) {
	m.calls++
	m.lastRequest = &request
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &domain.CreateQrResponse{QrData: "qr-payload", Value: request.TotalAmount}, nil
}
