package woocommerce

import (
	"context"
	"fmt"
	"net/http"
)

// LineItem is one order line. ProductID is omitted when the assembler
// falls back to a SKU-only line after provisioning trouble.
type LineItem struct {
	ProductID int64  `json:"product_id,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal,omitempty"`
	Total     string `json:"total,omitempty"`
}

// CouponLine attaches a discount code and its absolute amount to an order.
type CouponLine struct {
	Code     string `json:"code"`
	Discount string `json:"discount,omitempty"`
}

// MetaData is a free-form key/value attached to an order.
type MetaData struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// OrderCreateParams composes the order submission payload.
type OrderCreateParams struct {
	PaymentMethod      string       `json:"payment_method"`
	PaymentMethodTitle string       `json:"payment_method_title,omitempty"`
	Status             string       `json:"status"`
	CustomerID         int64        `json:"customer_id,omitempty"`
	Billing            Address      `json:"billing"`
	Shipping           Address      `json:"shipping"`
	LineItems          []LineItem   `json:"line_items"`
	CouponLines        []CouponLine `json:"coupon_lines,omitempty"`
	MetaData           []MetaData   `json:"meta_data,omitempty"`
	CustomerNote       string       `json:"customer_note,omitempty"`
}

// Order mirrors the subset of the WooCommerce order resource in use.
type Order struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	Status   string `json:"status"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// CreateOrder submits a composed order to the shop.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*Order, error) {
	c.log(ctx, "request", "create_order", map[string]any{
		"payment_method": params.PaymentMethod,
		"status":         params.Status,
		"line_items":     len(params.LineItems),
	})

	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, params, &order); err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"order_id":     order.ID,
		"order_number": order.Number,
		"order_status": order.Status,
	})
	return &order, nil
}

// GetOrder fetches an order by id.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	c.log(ctx, "request", "get_order", map[string]any{"order_id": orderID})

	var order Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil, nil, &order); err != nil {
		c.log(ctx, "error", "get_order", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "get_order", map[string]any{"order_id": order.ID, "order_status": order.Status})
	return &order, nil
}

// UpdateOrderStatus moves an order to the given status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*Order, error) {
	c.log(ctx, "request", "update_order_status", map[string]any{"order_id": orderID, "order_status": status})

	var order Order
	payload := map[string]any{"status": status}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", orderID), nil, payload, &order); err != nil {
		c.log(ctx, "error", "update_order_status", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "update_order_status", map[string]any{"order_id": order.ID, "order_status": order.Status})
	return &order, nil
}
