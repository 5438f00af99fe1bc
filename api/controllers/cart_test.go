package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tubeboost/storefront-backend/api/middleware"
	"github.com/tubeboost/storefront-backend/api/responses"
	"github.com/tubeboost/storefront-backend/pkg/logger"

	"github.com/tubeboost/storefront-backend/internal/cart"
)

type stubCartService struct {
	lastSession string
	lastAdd     cart.AddItemInput
	lastItemID  string
	lastQty     int
	snapshot    cart.Snapshot
	item        cart.Item
	err         error
	loading     []string
}

func (s *stubCartService) AddItem(ctx context.Context, sessionID string, input cart.AddItemInput) (cart.Item, cart.Snapshot, error) {
	s.lastSession = sessionID
	s.lastAdd = input
	return s.item, s.snapshot, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, sessionID, itemID string) (cart.Snapshot, error) {
	s.lastSession = sessionID
	s.lastItemID = itemID
	return s.snapshot, s.err
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (cart.Snapshot, error) {
	s.lastSession = sessionID
	s.lastItemID = itemID
	s.lastQty = quantity
	return s.snapshot, s.err
}

func (s *stubCartService) Clear(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	s.lastSession = sessionID
	return s.snapshot, s.err
}

func (s *stubCartService) Get(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	s.lastSession = sessionID
	return s.snapshot, s.err
}

func (s *stubCartService) LoadingOperations(sessionID string) []string {
	return s.loading
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

// withSession routes the request through the session middleware so
// controllers see a session id the way they do in production.
func withSession(handler http.HandlerFunc) http.Handler {
	return middleware.Session(nil)(handler)
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Session-ID", uuid.NewString())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestCartGetReturnsSnapshot(t *testing.T) {
	svc := &stubCartService{snapshot: cart.Snapshot{
		Items: []cart.Item{{ID: "a", OfferingSlug: "youtube-views", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")}},
		Total: decimal.RequireFromString("20.00"),
	}}

	w := doJSON(t, withSession(CartGet(svc, testLogger())), http.MethodGet, "/api/v1/cart", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastSession == "" {
		t.Fatal("controller must pass the session id through")
	}

	var envelope responses.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	data := envelope.Data.(map[string]any)
	if data["total"] != "20.00" {
		t.Fatalf("unexpected total %v", data["total"])
	}
}

func TestCartAddItemPricesServerSide(t *testing.T) {
	svc := &stubCartService{
		item:     cart.Item{ID: "new", OfferingSlug: "youtube-views", Quantity: 1, UnitPrice: decimal.RequireFromString("80.00")},
		snapshot: cart.Snapshot{Items: []cart.Item{}, Total: decimal.RequireFromString("80.00")},
	}

	body := map[string]any{
		"offering_slug":    "youtube-views",
		"service_quantity": 5000,
		"url":              "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	w := doJSON(t, withSession(CartAddItem(svc, testLogger())), http.MethodPost, "/api/v1/cart/items", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// 0.02 x 5000 = 100.00 subtotal, 20% tier discount, no add-ons: 80.00.
	if !svc.lastAdd.UnitPrice.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("expected computed unit price 80, got %s", svc.lastAdd.UnitPrice)
	}
	if svc.lastAdd.Quantity != 1 {
		t.Fatalf("multiplier must default to 1, got %d", svc.lastAdd.Quantity)
	}
	if svc.lastAdd.Options.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("options must carry the cleaned url, got %q", svc.lastAdd.Options.URL)
	}
	if svc.lastAdd.Options.SelectedQuantity != 5000 {
		t.Fatalf("options must carry the service quantity, got %d", svc.lastAdd.Options.SelectedQuantity)
	}
}

func TestCartAddItemRejectsWrongTargetKind(t *testing.T) {
	svc := &stubCartService{}

	// Subscribers target a channel; a video URL must fail validation.
	body := map[string]any{
		"offering_slug":    "youtube-subscribers",
		"service_quantity": 500,
		"url":              "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	w := doJSON(t, withSession(CartAddItem(svc, testLogger())), http.MethodPost, "/api/v1/cart/items", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCartAddItemRejectsUnknownOffering(t *testing.T) {
	body := map[string]any{
		"offering_slug":    "nope",
		"service_quantity": 1000,
		"url":              "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	w := doJSON(t, withSession(CartAddItem(&stubCartService{}, testLogger())), http.MethodPost, "/api/v1/cart/items", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCartAddItemRejectsUnselectableQuantity(t *testing.T) {
	body := map[string]any{
		"offering_slug":    "youtube-views",
		"service_quantity": 1234,
		"url":              "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	w := doJSON(t, withSession(CartAddItem(&stubCartService{}, testLogger())), http.MethodPost, "/api/v1/cart/items", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCartUpdateItemPassesQuantity(t *testing.T) {
	svc := &stubCartService{snapshot: cart.Snapshot{Items: []cart.Item{}, Total: decimal.Zero}}

	router := chi.NewRouter()
	router.Use(middleware.Session(nil))
	router.Patch("/api/v1/cart/items/{itemID}", CartUpdateItem(svc, testLogger()))

	w := doJSON(t, router, http.MethodPatch, "/api/v1/cart/items/item-1", map[string]any{"quantity": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastItemID != "item-1" || svc.lastQty != 3 {
		t.Fatalf("unexpected call item=%q qty=%d", svc.lastItemID, svc.lastQty)
	}
}

func TestCartUpdateItemRejectsZeroQuantity(t *testing.T) {
	router := chi.NewRouter()
	router.Use(middleware.Session(nil))
	router.Patch("/api/v1/cart/items/{itemID}", CartUpdateItem(&stubCartService{}, testLogger()))

	w := doJSON(t, router, http.MethodPatch, "/api/v1/cart/items/item-1", map[string]any{"quantity": 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("quantity floor must be enforced at the boundary, got %d", w.Code)
	}
}

func TestCartOperationsListsLoadingKeys(t *testing.T) {
	svc := &stubCartService{loading: []string{"remove_item:item-1"}}

	w := doJSON(t, withSession(CartOperations(svc)), http.MethodGet, "/api/v1/cart/operations", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var envelope responses.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	loading := envelope.Data.(map[string]any)["loading"].([]any)
	if len(loading) != 1 || loading[0] != "remove_item:item-1" {
		t.Fatalf("unexpected loading keys %v", loading)
	}
}
