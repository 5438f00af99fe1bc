package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
	"github.com/tubeboost/storefront-backend/pkg/metrics"
	"github.com/tubeboost/storefront-backend/pkg/woocommerce"

	"github.com/tubeboost/storefront-backend/internal/cart"
	"github.com/tubeboost/storefront-backend/internal/customers"
	"github.com/tubeboost/storefront-backend/internal/offerings"
)

type cartReader interface {
	Get(ctx context.Context, sessionID string) (cart.Snapshot, error)
}

type customerResolver interface {
	ResolveOrCreate(ctx context.Context, identity customers.Identity) (*woocommerce.Customer, error)
}

type productProvisioner interface {
	EnsureProduct(ctx context.Context, slug string) (*woocommerce.Product, error)
}

type orderAPI interface {
	CreateOrder(ctx context.Context, params woocommerce.OrderCreateParams) (*woocommerce.Order, error)
}

// Statuses an assembled order can start in. Offline payment methods park
// the order until funds clear; everything else goes straight to fulfilment.
const (
	StatusProcessing = "processing"
	StatusOnHold     = "on-hold"
)

var onHoldMethods = map[string]struct{}{
	"bacs":   {},
	"cheque": {},
}

// Assembler turns a session's cart into a submitted shop order.
type Assembler struct {
	carts       cartReader
	resolver    customerResolver
	provisioner productProvisioner
	shop        orderAPI
	logg        *logger.Logger
	checkout    *metrics.CheckoutMetrics
}

// NewAssembler wires the order assembler.
func NewAssembler(carts cartReader, resolver customerResolver, provisioner productProvisioner, shop orderAPI, logg *logger.Logger, checkout *metrics.CheckoutMetrics) (*Assembler, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("customer resolver required")
	}
	if provisioner == nil {
		return nil, fmt.Errorf("product provisioner required")
	}
	if shop == nil {
		return nil, fmt.Errorf("shop client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Assembler{
		carts:       carts,
		resolver:    resolver,
		provisioner: provisioner,
		shop:        shop,
		logg:        logg,
		checkout:    checkout,
	}, nil
}

// AssembleInput carries everything checkout knows about the buyer and how
// they intend to pay.
type AssembleInput struct {
	SessionID          string
	Identity           customers.Identity
	PaymentMethod      string
	PaymentMethodTitle string
	CouponCode         string
	CouponAmount       string
	CustomerNote       string
}

// Result reports the submitted order alongside the snapshot it was built from.
type Result struct {
	Order    *woocommerce.Order
	Snapshot cart.Snapshot
	Customer *woocommerce.Customer
}

// Assemble submits one order for the session's current cart. The submission
// is all-or-nothing: any failure leaves the cart untouched so the buyer can
// retry without rebuilding it.
func (a *Assembler) Assemble(ctx context.Context, input AssembleInput) (*Result, error) {
	if input.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if input.PaymentMethod == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	snapshot, err := a.carts.Get(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	customer, err := a.resolver.ResolveOrCreate(ctx, input.Identity)
	if err != nil {
		// Without a resolved customer the order would orphan; this failure
		// is fatal rather than degradable.
		a.checkout.IncOrderSubmitted("customer_failed")
		return nil, err
	}

	lines := make([]woocommerce.LineItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		lines = append(lines, a.buildLine(ctx, item))
	}

	status := StatusProcessing
	if _, hold := onHoldMethods[input.PaymentMethod]; hold {
		status = StatusOnHold
	}

	params := woocommerce.OrderCreateParams{
		PaymentMethod:      input.PaymentMethod,
		PaymentMethodTitle: input.PaymentMethodTitle,
		Status:             status,
		CustomerID:         customer.ID,
		Billing:            customer.Billing,
		Shipping:           customer.Shipping,
		LineItems:          lines,
		CustomerNote:       input.CustomerNote,
		MetaData: []woocommerce.MetaData{
			{Key: "storefront_session", Value: input.SessionID},
		},
	}
	if input.CouponCode != "" && isPositiveAmount(input.CouponAmount) {
		params.CouponLines = []woocommerce.CouponLine{{Code: input.CouponCode, Discount: input.CouponAmount}}
	}

	started := time.Now()
	order, err := a.shop.CreateOrder(ctx, params)
	a.checkout.ObserveOrderDuration(status, time.Since(started))
	if err != nil {
		a.checkout.IncOrderSubmitted("failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit order")
	}

	a.checkout.IncOrderSubmitted("success")
	lctx := a.logg.WithFields(ctx, map[string]any{"order_id": order.ID, "order_status": order.Status})
	a.logg.Info(lctx, "order submitted")

	return &Result{Order: order, Snapshot: snapshot, Customer: customer}, nil
}

// buildLine prices a cart item into an order line. When the backing product
// cannot be provisioned the line degrades to SKU-only so the order still
// lands; the shop reconciles the reference later.
func (a *Assembler) buildLine(ctx context.Context, item cart.Item) woocommerce.LineItem {
	lineTotal := item.Total().StringFixed(2)
	line := woocommerce.LineItem{
		Quantity: item.Quantity,
		Subtotal: lineTotal,
		Total:    lineTotal,
	}

	product, err := a.provisioner.EnsureProduct(ctx, item.OfferingSlug)
	if err == nil {
		line.ProductID = product.ID
		return line
	}

	a.checkout.IncProvisioningFallback(item.OfferingSlug)
	lctx := a.logg.WithFields(ctx, map[string]any{"offering": item.OfferingSlug, "error": err.Error()})
	a.logg.Warn(lctx, "product provisioning failed, submitting sku-only line")

	line.SKU = skuFor(item.OfferingSlug)
	line.Name = nameFor(item.OfferingSlug)
	return line
}

func skuFor(slug string) string {
	if offering, ok := offerings.BySlug(slug); ok {
		return offering.SKU()
	}
	return "tb-" + slug
}

func nameFor(slug string) string {
	if offering, ok := offerings.BySlug(slug); ok {
		return offering.Name
	}
	return slug
}

func isPositiveAmount(amount string) bool {
	value, err := decimal.NewFromString(amount)
	return err == nil && value.IsPositive()
}
