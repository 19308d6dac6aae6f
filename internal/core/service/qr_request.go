// Package service implements the core business logic.
package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/selforder/payments-service/internal/core/domain"
)

// qrRequestTTL is how long a QR payment request stays payable.
const qrRequestTTL = time.Hour

// BuildQrRequest turns an order's cart items into a gateway payment request.
// Each item's Value is its line total; the unit price is derived from it.
// Items with a non-positive quantity are rejected rather than producing a
// division by zero.
func BuildQrRequest(orderID string, items []domain.OrderItem, now time.Time) (domain.CreateQrRequest, error) {
	requestItems := make([]domain.QrRequestItem, 0, len(items))
	total := decimal.Zero

	for _, item := range items {
		if item.Quantity <= 0 {
			return domain.CreateQrRequest{}, domain.NewPaymentError(domain.ErrInvalidOrderItem,
				fmt.Sprintf("order item %s has non-positive quantity %d", item.ProductID, item.Quantity),
				"INVALID_ORDER_ITEM")
		}

		quantity := decimal.NewFromInt(int64(item.Quantity))
		requestItems = append(requestItems, domain.QrRequestItem{
			Title:       item.ProductID,
			Quantity:    item.Quantity,
			UnitMeasure: "unit",
			UnitPrice:   item.Value.Div(quantity),
			TotalAmount: item.Value,
		})

		total = total.Add(item.Value)
	}

	return domain.CreateQrRequest{
		ExternalReference: orderID,
		Title:             fmt.Sprintf("Purchase %s", orderID),
		Description:       "",
		TotalAmount:       total,
		ExpirationDate:    now.Add(qrRequestTTL),
		Items:             requestItems,
	}, nil
}
