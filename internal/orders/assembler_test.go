package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
	"github.com/tubeboost/storefront-backend/pkg/woocommerce"

	"github.com/tubeboost/storefront-backend/internal/cart"
	"github.com/tubeboost/storefront-backend/internal/customers"
)

type stubCartReader struct {
	snapshot cart.Snapshot
	err      error
}

func (s *stubCartReader) Get(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	return s.snapshot, s.err
}

type stubResolver struct {
	customer *woocommerce.Customer
	err      error
}

func (s *stubResolver) ResolveOrCreate(ctx context.Context, identity customers.Identity) (*woocommerce.Customer, error) {
	return s.customer, s.err
}

type stubProvisioner struct {
	products map[string]*woocommerce.Product
	failFor  map[string]error
}

func (s *stubProvisioner) EnsureProduct(ctx context.Context, slug string) (*woocommerce.Product, error) {
	if err, ok := s.failFor[slug]; ok {
		return nil, err
	}
	if product, ok := s.products[slug]; ok {
		return product, nil
	}
	return &woocommerce.Product{ID: 1, SKU: "tb-" + slug}, nil
}

type stubOrderAPI struct {
	order      *woocommerce.Order
	err        error
	lastParams woocommerce.OrderCreateParams
	calls      int
}

func (s *stubOrderAPI) CreateOrder(ctx context.Context, params woocommerce.OrderCreateParams) (*woocommerce.Order, error) {
	s.calls++
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func twoItemSnapshot() cart.Snapshot {
	items := []cart.Item{
		{ID: "a", OfferingSlug: "youtube-views", Quantity: 1, UnitPrice: decimal.RequireFromString("80.00")},
		{ID: "b", OfferingSlug: "youtube-likes", Quantity: 2, UnitPrice: decimal.RequireFromString("15.00")},
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total())
	}
	return cart.Snapshot{Items: items, Total: total}
}

func newTestAssembler(t *testing.T, carts cartReader, resolver customerResolver, provisioner productProvisioner, shop orderAPI) *Assembler {
	t.Helper()
	assembler, err := NewAssembler(carts, resolver, provisioner, shop, logger.New(logger.Options{ServiceName: "test"}), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return assembler
}

func baseInput() AssembleInput {
	return AssembleInput{
		SessionID:     "sess",
		Identity:      customers.Identity{Email: "buyer@example.com"},
		PaymentMethod: "paypal",
	}
}

func TestAssembleSubmitsPricedLines(t *testing.T) {
	t.Parallel()

	shop := &stubOrderAPI{order: &woocommerce.Order{ID: 900, Status: StatusProcessing, Total: "110.00"}}
	assembler := newTestAssembler(t,
		&stubCartReader{snapshot: twoItemSnapshot()},
		&stubResolver{customer: &woocommerce.Customer{ID: 42}},
		&stubProvisioner{products: map[string]*woocommerce.Product{
			"youtube-views": {ID: 11},
			"youtube-likes": {ID: 12},
		}},
		shop,
	)

	result, err := assembler.Assemble(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Order.ID != 900 {
		t.Fatalf("unexpected order %+v", result.Order)
	}

	params := shop.lastParams
	if params.Status != StatusProcessing {
		t.Fatalf("expected processing status, got %s", params.Status)
	}
	if params.CustomerID != 42 {
		t.Fatalf("expected resolved customer id, got %d", params.CustomerID)
	}
	if len(params.LineItems) != 2 {
		t.Fatalf("expected two lines, got %d", len(params.LineItems))
	}
	if params.LineItems[0].ProductID != 11 || params.LineItems[0].Total != "80.00" {
		t.Fatalf("line must carry the cart price, got %+v", params.LineItems[0])
	}
	if params.LineItems[1].Total != "30.00" {
		t.Fatalf("line totals come from the snapshot, got %+v", params.LineItems[1])
	}
}

func TestAssembleEmptyCartRejected(t *testing.T) {
	t.Parallel()

	shop := &stubOrderAPI{}
	assembler := newTestAssembler(t,
		&stubCartReader{snapshot: cart.Snapshot{Items: []cart.Item{}}},
		&stubResolver{customer: &woocommerce.Customer{ID: 42}},
		&stubProvisioner{},
		shop,
	)

	_, err := assembler.Assemble(context.Background(), baseInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if shop.calls != 0 {
		t.Fatal("empty cart must not reach the shop")
	}
}

func TestAssembleCustomerFailureIsFatal(t *testing.T) {
	t.Parallel()

	shop := &stubOrderAPI{}
	assembler := newTestAssembler(t,
		&stubCartReader{snapshot: twoItemSnapshot()},
		&stubResolver{err: pkgerrors.New(pkgerrors.CodeAccountMismatch, "unresolvable")},
		&stubProvisioner{},
		shop,
	)

	_, err := assembler.Assemble(context.Background(), baseInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeAccountMismatch) {
		t.Fatalf("expected the resolver error to propagate, got %v", err)
	}
	if shop.calls != 0 {
		t.Fatal("unresolved customer must not reach the shop")
	}
}

func TestAssembleProvisioningFallbackDegradesToSKU(t *testing.T) {
	t.Parallel()

	shop := &stubOrderAPI{order: &woocommerce.Order{ID: 901, Status: StatusProcessing}}
	assembler := newTestAssembler(t,
		&stubCartReader{snapshot: twoItemSnapshot()},
		&stubResolver{customer: &woocommerce.Customer{ID: 42}},
		&stubProvisioner{
			products: map[string]*woocommerce.Product{"youtube-views": {ID: 11}},
			failFor:  map[string]error{"youtube-likes": errors.New("shop rejected product")},
		},
		shop,
	)

	if _, err := assembler.Assemble(context.Background(), baseInput()); err != nil {
		t.Fatalf("fallback must not fail the order: %v", err)
	}

	lines := shop.lastParams.LineItems
	if lines[0].ProductID != 11 || lines[0].SKU != "" {
		t.Fatalf("provisioned line must reference the product, got %+v", lines[0])
	}
	if lines[1].ProductID != 0 || lines[1].SKU != "tb-youtube-likes" {
		t.Fatalf("failed line must degrade to sku-only, got %+v", lines[1])
	}
	if lines[1].Total != "30.00" {
		t.Fatalf("fallback line keeps the cart price, got %+v", lines[1])
	}
}

func TestAssembleOfflineMethodsStartOnHold(t *testing.T) {
	t.Parallel()

	for _, method := range []string{"bacs", "cheque"} {
		shop := &stubOrderAPI{order: &woocommerce.Order{ID: 902, Status: StatusOnHold}}
		assembler := newTestAssembler(t,
			&stubCartReader{snapshot: twoItemSnapshot()},
			&stubResolver{customer: &woocommerce.Customer{ID: 42}},
			&stubProvisioner{},
			shop,
		)

		input := baseInput()
		input.PaymentMethod = method
		if _, err := assembler.Assemble(context.Background(), input); err != nil {
			t.Fatalf("unexpected error for %s: %v", method, err)
		}
		if shop.lastParams.Status != StatusOnHold {
			t.Fatalf("method %s must start on-hold, got %s", method, shop.lastParams.Status)
		}
	}
}

func TestAssembleCouponLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		code   string
		amount string
		want   int
	}{
		{"code with positive amount", "LAUNCH10", "10.00", 1},
		{"code with zero amount", "LAUNCH10", "0", 0},
		{"amount without code", "", "10.00", 0},
		{"unparseable amount", "LAUNCH10", "lots", 0},
	}
	for _, tc := range cases {
		shop := &stubOrderAPI{order: &woocommerce.Order{ID: 903}}
		assembler := newTestAssembler(t,
			&stubCartReader{snapshot: twoItemSnapshot()},
			&stubResolver{customer: &woocommerce.Customer{ID: 42}},
			&stubProvisioner{},
			shop,
		)

		input := baseInput()
		input.CouponCode = tc.code
		input.CouponAmount = tc.amount
		if _, err := assembler.Assemble(context.Background(), input); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got := len(shop.lastParams.CouponLines); got != tc.want {
			t.Fatalf("%s: expected %d coupon lines, got %d", tc.name, tc.want, got)
		}
	}
}

func TestAssembleShopFailurePropagates(t *testing.T) {
	t.Parallel()

	assembler := newTestAssembler(t,
		&stubCartReader{snapshot: twoItemSnapshot()},
		&stubResolver{customer: &woocommerce.Customer{ID: 42}},
		&stubProvisioner{},
		&stubOrderAPI{err: errors.New("shop down")},
	)

	_, err := assembler.Assemble(context.Background(), baseInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
