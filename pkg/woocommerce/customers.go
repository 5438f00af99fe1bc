package woocommerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Address is the billing/shipping block shared by customers and orders.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Customer mirrors the subset of the WooCommerce customer resource in use.
type Customer struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Billing  Address `json:"billing"`
	Shipping Address `json:"shipping"`
}

// CustomerCreateParams is the creation payload for a storefront customer.
type CustomerCreateParams struct {
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `json:"username"`
	Billing   Address `json:"billing"`
	Shipping  Address `json:"shipping"`
}

// FindCustomersByEmail queries the customer directory by exact email.
func (c *Client) FindCustomersByEmail(ctx context.Context, email string) ([]Customer, error) {
	c.log(ctx, "request", "find_customers", map[string]any{"email": email})

	var customers []Customer
	query := url.Values{"email": []string{email}, "per_page": []string{"10"}}
	if err := c.do(ctx, http.MethodGet, "/customers", query, nil, &customers); err != nil {
		c.log(ctx, "error", "find_customers", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "find_customers", map[string]any{"count": len(customers)})
	return customers, nil
}

// CreateCustomer registers a new customer record.
func (c *Client) CreateCustomer(ctx context.Context, params CustomerCreateParams) (*Customer, error) {
	c.log(ctx, "request", "create_customer", map[string]any{"email": params.Email, "username": params.Username})

	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers", nil, params, &customer); err != nil {
		c.log(ctx, "error", "create_customer", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_customer", map[string]any{"customer_id": customer.ID})
	return &customer, nil
}

// UpdateCustomerBilling refreshes a customer's billing block.
func (c *Client) UpdateCustomerBilling(ctx context.Context, customerID int64, billing Address) (*Customer, error) {
	c.log(ctx, "request", "update_customer", map[string]any{"customer_id": customerID})

	var customer Customer
	payload := map[string]any{"billing": billing}
	path := fmt.Sprintf("/customers/%d", customerID)
	if err := c.do(ctx, http.MethodPut, path, nil, payload, &customer); err != nil {
		c.log(ctx, "error", "update_customer", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "update_customer", map[string]any{"customer_id": customer.ID})
	return &customer, nil
}
