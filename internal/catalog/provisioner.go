package catalog

import (
	"context"
	"fmt"

	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
	"github.com/tubeboost/storefront-backend/pkg/woocommerce"

	"github.com/tubeboost/storefront-backend/internal/offerings"
)

type productAPI interface {
	FindProductBySKU(ctx context.Context, sku string) (*woocommerce.Product, error)
	CreateProduct(ctx context.Context, params woocommerce.ProductCreateParams) (*woocommerce.Product, error)
}

// Provisioner lazily mirrors the local offering catalog into the upstream
// shop. The local service stays the storefront of record; the shop only
// needs a product row so orders can reference a product id.
type Provisioner struct {
	shop productAPI
	logg *logger.Logger
}

// NewProvisioner builds a catalog provisioner over the shop client.
func NewProvisioner(shop productAPI, logg *logger.Logger) (*Provisioner, error) {
	if shop == nil {
		return nil, fmt.Errorf("shop client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Provisioner{shop: shop, logg: logg}, nil
}

// EnsureProduct resolves the shop product backing an offering, creating it
// if the shop has never seen the SKU. The operation is idempotent: the SKU
// is deterministic from the slug, so repeated calls converge on one product.
func (p *Provisioner) EnsureProduct(ctx context.Context, slug string) (*woocommerce.Product, error) {
	offering, ok := offerings.BySlug(slug)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown offering %q", slug))
	}

	sku := offering.SKU()
	existing, err := p.shop.FindProductBySKU(ctx, sku)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("look up product for offering %q", slug))
	}
	if existing != nil {
		return existing, nil
	}

	lctx := p.logg.WithField(ctx, "sku", sku)
	p.logg.Info(lctx, "provisioning missing shop product")

	created, err := p.shop.CreateProduct(ctx, woocommerce.ProductCreateParams{
		Name:         offering.Name,
		Type:         "simple",
		Description:  offering.Description,
		SKU:          sku,
		RegularPrice: offering.BasePrice.String(),
		Virtual:      true,
		// Provisioned rows exist for order references only; keep them out
		// of the shop's own storefront listings.
		CatalogVisibility: "hidden",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("provision product for offering %q", slug))
	}
	return created, nil
}
