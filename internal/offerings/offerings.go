package offerings

import (
	"github.com/shopspring/decimal"

	"github.com/tubeboost/storefront-backend/internal/linkcheck"
)

// Offering is a statically-defined purchasable service type. The local site
// is the storefront of record for these; the upstream shop only learns about
// them through provisioning at order time.
type Offering struct {
	Slug              string
	Name              string
	Description       string
	TargetKind        linkcheck.Kind
	BasePrice         decimal.Decimal
	ServiceQuantities []int64
	DefaultQuantity   int64
	SpeedFee          decimal.Decimal
	TargetFee         decimal.Decimal
}

// SKU returns the deterministic catalog SKU for the offering.
func (o Offering) SKU() string {
	return "tb-" + o.Slug
}

// PriceFor returns the undiscounted bundle price for a service quantity.
func (o Offering) PriceFor(quantity int64) decimal.Decimal {
	return o.BasePrice.Mul(decimal.NewFromInt(quantity))
}

var catalog = []Offering{
	{
		Slug:              "youtube-views",
		Name:              "YouTube Views",
		Description:       "High-retention views delivered gradually to your video.",
		TargetKind:        linkcheck.KindVideo,
		BasePrice:         decimal.RequireFromString("0.02"),
		ServiceQuantities: []int64{1000, 2500, 5000, 10000, 20000, 50000},
		DefaultQuantity:   5000,
		SpeedFee:          decimal.RequireFromString("4.99"),
		TargetFee:         decimal.RequireFromString("0.005"),
	},
	{
		Slug:              "youtube-likes",
		Name:              "YouTube Likes",
		Description:       "Likes from active profiles spread over a natural curve.",
		TargetKind:        linkcheck.KindVideo,
		BasePrice:         decimal.RequireFromString("0.03"),
		ServiceQuantities: []int64{250, 500, 1000, 2500, 5000},
		DefaultQuantity:   1000,
		SpeedFee:          decimal.RequireFromString("2.99"),
		TargetFee:         decimal.RequireFromString("0.01"),
	},
	{
		Slug:              "youtube-subscribers",
		Name:              "YouTube Subscribers",
		Description:       "Channel subscribers with gradual rollout and retention refill.",
		TargetKind:        linkcheck.KindChannel,
		BasePrice:         decimal.RequireFromString("0.06"),
		ServiceQuantities: []int64{100, 250, 500, 1000, 2500, 5000},
		DefaultQuantity:   500,
		SpeedFee:          decimal.RequireFromString("9.99"),
		TargetFee:         decimal.RequireFromString("0.02"),
	},
	{
		Slug:              "youtube-watch-hours",
		Name:              "YouTube Watch Hours",
		Description:       "Monetization-ready watch time toward the 4,000 hour threshold.",
		TargetKind:        linkcheck.KindVideo,
		BasePrice:         decimal.RequireFromString("0.045"),
		ServiceQuantities: []int64{500, 1000, 2000, 4000},
		DefaultQuantity:   1000,
		SpeedFee:          decimal.RequireFromString("14.99"),
		TargetFee:         decimal.RequireFromString("0"),
	},
}

// All returns the full offering catalog in display order.
func All() []Offering {
	out := make([]Offering, len(catalog))
	copy(out, catalog)
	return out
}

// BySlug resolves an offering definition.
func BySlug(slug string) (Offering, bool) {
	for _, offering := range catalog {
		if offering.Slug == slug {
			return offering, true
		}
	}
	return Offering{}, false
}
