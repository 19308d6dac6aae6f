// Package mercadopago implements the PaymentGateway interface against the
// Mercado Pago in-store QR API.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/selforder/payments-service/internal/core/domain"
)

// Adapter implements ports.PaymentGateway by posting dynamic QR orders to the
// Mercado Pago in-store API.
type Adapter struct {
	baseURL    string
	token      string
	userID     int64
	posID      string
	httpClient *http.Client
}

// NewAdapter creates a new Mercado Pago adapter. userID and posID identify the
// seller collector and point of sale the QR codes are issued for.
func NewAdapter(baseURL, token string, userID int64, posID string, timeout time.Duration) *Adapter {
	return &Adapter{
		baseURL: baseURL,
		token:   token,
		userID:  userID,
		posID:   posID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// qrItemRequest is the wire form of a QR order line. Mercado Pago expects
// snake_case keys and plain JSON numbers for amounts.
type qrItemRequest struct {
	Title       string  `json:"title"`
	Quantity    int     `json:"quantity"`
	UnitMeasure string  `json:"unit_measure"`
	UnitPrice   float64 `json:"unit_price"`
	TotalAmount float64 `json:"total_amount"`
}

// qrOrderRequest is the wire form of a dynamic QR order.
type qrOrderRequest struct {
	ExternalReference string          `json:"external_reference"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	TotalAmount       float64         `json:"total_amount"`
	ExpirationDate    string          `json:"expiration_date"`
	Items             []qrItemRequest `json:"items"`
}

// qrOrderResponse is the wire form of the QR order response.
type qrOrderResponse struct {
	QrData         string `json:"qr_data"`
	InStoreOrderID string `json:"in_store_order_id"`
}

// CreateQrPayment submits a QR payment request and returns the QR payload with
// the confirmed amount.
func (a *Adapter) CreateQrPayment(ctx context.Context, request domain.CreateQrRequest) (*domain.CreateQrResponse, error) {
	url := fmt.Sprintf("%s/instore/orders/qr/seller/collectors/%d/pos/%s/qrs",
		a.baseURL, a.userID, a.posID)

	payload := qrOrderRequest{
		ExternalReference: request.ExternalReference,
		Title:             request.Title,
		Description:       request.Description,
		TotalAmount:       request.TotalAmount.InexactFloat64(),
		ExpirationDate:    request.ExpirationDate.Format(time.RFC3339),
		Items:             make([]qrItemRequest, 0, len(request.Items)),
	}
	for _, item := range request.Items {
		payload.Items = append(payload.Items, qrItemRequest{
			Title:       item.Title,
			Quantity:    item.Quantity,
			UnitMeasure: item.UnitMeasure,
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			TotalAmount: item.TotalAmount.InexactFloat64(),
		})
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, a.decodeError(resp)
	}

	var qr qrOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("failed to decode QR order response: %w", err)
	}

	return &domain.CreateQrResponse{
		QrData: qr.QrData,
		// The gateway does not echo the amount; the confirmed value is the
		// total it accepted in the request.
		Value: request.TotalAmount,
	}, nil
}

// errorResponse represents a Mercado Pago error body.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// decodeError turns a non-2xx Mercado Pago response into an error.
func (a *Adapter) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var mpErr errorResponse
	if err := json.Unmarshal(body, &mpErr); err == nil && (mpErr.Message != "" || mpErr.Error != "") {
		return fmt.Errorf("mercado pago error: %s, message: %s, status: %d",
			mpErr.Error, mpErr.Message, resp.StatusCode)
	}

	return fmt.Errorf("mercado pago returned status %d: %s", resp.StatusCode, string(body))
}
