package woocommerce

import (
	"context"
	"net/http"
	"net/url"
)

// Product mirrors the subset of the WooCommerce product resource this
// service reads and writes.
type Product struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Type              string `json:"type"`
	Description       string `json:"description"`
	SKU               string `json:"sku"`
	RegularPrice      string `json:"regular_price"`
	Virtual           bool   `json:"virtual"`
	CatalogVisibility string `json:"catalog_visibility"`
}

// ProductCreateParams is the creation payload for a provisioned product.
type ProductCreateParams struct {
	Name              string `json:"name"`
	Type              string `json:"type"`
	Description       string `json:"description"`
	SKU               string `json:"sku"`
	RegularPrice      string `json:"regular_price"`
	Virtual           bool   `json:"virtual"`
	CatalogVisibility string `json:"catalog_visibility"`
}

// FindProductBySKU looks up a product by its exact SKU. A nil product with
// a nil error means the SKU is unknown to the shop.
func (c *Client) FindProductBySKU(ctx context.Context, sku string) (*Product, error) {
	c.log(ctx, "request", "find_product", map[string]any{"sku": sku})

	var products []Product
	query := url.Values{"sku": []string{sku}, "per_page": []string{"1"}}
	if err := c.do(ctx, http.MethodGet, "/products", query, nil, &products); err != nil {
		c.log(ctx, "error", "find_product", map[string]any{"error": err.Error()})
		return nil, err
	}

	if len(products) == 0 {
		c.log(ctx, "response", "find_product", map[string]any{"found": false})
		return nil, nil
	}
	c.log(ctx, "response", "find_product", map[string]any{"found": true, "product_id": products[0].ID})
	return &products[0], nil
}

// CreateProduct registers a new product in the shop catalog.
func (c *Client) CreateProduct(ctx context.Context, params ProductCreateParams) (*Product, error) {
	c.log(ctx, "request", "create_product", map[string]any{"sku": params.SKU, "name": params.Name})

	var product Product
	if err := c.do(ctx, http.MethodPost, "/products", nil, params, &product); err != nil {
		c.log(ctx, "error", "create_product", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_product", map[string]any{"product_id": product.ID})
	return &product, nil
}
