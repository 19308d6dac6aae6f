// Package orderapi provides the HTTP client for the order microservice.
package orderapi

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

// Client implements ports.OrderGateway by making HTTP requests to the order
// microservice.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new order microservice client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetCreatedOrder fetches an order that is still in status "created".
// Returns domain.ErrOrderNotFound when the order service has no such order.
func (c *Client) GetCreatedOrder(ctx context.Context, id string) (*domain.Order, error) {
	url := fmt.Sprintf("%s/orders/%s?status=created", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success - continue
	case http.StatusNotFound:
		return nil, domain.ErrOrderNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("order service returned status %d: %s", resp.StatusCode, string(body))
	}

	var order domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}

	return &order, nil
}

// GetCartItems fetches the cart lines of an order.
func (c *Client) GetCartItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	url := fmt.Sprintf("%s/order-items/%s", c.baseURL, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("order service returned status %d: %s", resp.StatusCode, string(body))
	}

	var items []domain.OrderItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}

	return items, nil
}

// UpdateOrder applies a targeted status/readableId update to an order.
func (c *Client) UpdateOrder(ctx context.Context, params domain.UpdateOrderParams) (*domain.Order, error) {
	url := fmt.Sprintf("%s/orders/%s", c.baseURL, params.ID)

	jsonBody, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("order service returned status %d: %s", resp.StatusCode, string(body))
	}

	var order domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode updated order: %w", err)
	}

	return &order, nil
}

// orderCountResponse represents the valid-orders-today JSON response.
type orderCountResponse struct {
	Count int `json:"count"`
}

// GetValidOrderCountToday returns how many valid orders were placed today.
func (c *Client) GetValidOrderCountToday(ctx context.Context) (int, error) {
	url := fmt.Sprintf("%s/orders/valid-orders-today", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch order count: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("order service returned status %d: %s", resp.StatusCode, string(body))
	}

	var count orderCountResponse
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, fmt.Errorf("failed to decode order count: %w", err)
	}

	return count.Count, nil
}
