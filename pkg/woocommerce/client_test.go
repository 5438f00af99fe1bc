package woocommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tubeboost/storefront-backend/pkg/config"
	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logg := logger.New(logger.Options{ServiceName: "test"})
	client, err := NewClient(context.Background(), config.WooCommerceConfig{
		BaseURL:        server.URL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		APIVersion:     "wc/v3",
	}, logg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client, server
}

func TestNewClientValidatesCredentials(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	if _, err := NewClient(context.Background(), config.WooCommerceConfig{BaseURL: "https://x"}, logg); err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if _, err := NewClient(context.Background(), config.WooCommerceConfig{ConsumerKey: "k", ConsumerSecret: "s"}, logg); err == nil {
		t.Fatal("expected error for missing base url")
	}
}

func TestFindProductBySKU(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wc/v3/products" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("consumer_key") != "ck_test" || q.Get("consumer_secret") != "cs_test" {
			t.Fatalf("expected auth query params, got %s", r.URL.RawQuery)
		}
		switch q.Get("sku") {
		case "tb-youtube-views":
			json.NewEncoder(w).Encode([]Product{{ID: 42, SKU: "tb-youtube-views"}})
		default:
			json.NewEncoder(w).Encode([]Product{})
		}
	})

	product, err := client.FindProductBySKU(context.Background(), "tb-youtube-views")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product == nil || product.ID != 42 {
		t.Fatalf("expected product 42, got %+v", product)
	}

	missing, err := client.FindProductBySKU(context.Background(), "tb-unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil product for unknown sku, got %+v", missing)
	}
}

func TestCreateOrderSubmitsPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/wp-json/wc/v3/orders" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var params OrderCreateParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if params.Status != "processing" || len(params.LineItems) != 1 {
			t.Fatalf("unexpected payload %+v", params)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Order{ID: 7, Number: "7", Status: params.Status})
	})

	order, err := client.CreateOrder(context.Background(), OrderCreateParams{
		PaymentMethod: "paypal",
		Status:        "processing",
		LineItems:     []LineItem{{ProductID: 42, Quantity: 1, Total: "80.00"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 7 || order.Number != "7" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestErrorMapping(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "registration-error-email-exists",
			"message": "An account is already registered with your email address.",
		})
	})

	_, err := client.CreateCustomer(context.Background(), CustomerCreateParams{Email: "a@b.com"})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	apiErr := AsAPIError(err)
	if apiErr == nil || apiErr.ErrCode != "registration-error-email-exists" {
		t.Fatalf("expected structured api error, got %v", err)
	}
}
