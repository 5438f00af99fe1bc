package pricing

import "github.com/shopspring/decimal"

// Quantity-tier discounts, highest breakpoint first. Breakpoints are
// inclusive lower bounds over the service quantity.
var discountTiers = []struct {
	MinQuantity int64
	Percent     int64
}{
	{MinQuantity: 20000, Percent: 40},
	{MinQuantity: 10000, Percent: 30},
	{MinQuantity: 5000, Percent: 20},
	{MinQuantity: 2500, Percent: 10},
}

// BreakdownInput configures a single line item price computation.
// BasePrice is the per-engagement price, Quantity the service quantity
// (e.g. 5,000 views). The target fee is discount-eligible and scales with
// quantity; the speed fee is a flat per-order surcharge outside the discount.
type BreakdownInput struct {
	BasePrice decimal.Decimal
	Quantity  int64
	SpeedFee  decimal.Decimal
	TargetFee decimal.Decimal
}

// Breakdown is the computed price decomposition for one line item.
type Breakdown struct {
	Subtotal       decimal.Decimal
	Discount       int64
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// DiscountTier returns the discount percentage for the given service quantity.
func DiscountTier(quantity int64) int64 {
	for _, tier := range discountTiers {
		if quantity >= tier.MinQuantity {
			return tier.Percent
		}
	}
	return 0
}

// Compute derives the price breakdown for a line item configuration.
// No rounding happens here; display formatting owns that, so the invariant
// total = subtotal - discountAmount holds at full precision.
func Compute(in BreakdownInput) Breakdown {
	quantity := decimal.NewFromInt(in.Quantity)
	eligible := in.BasePrice.Add(in.TargetFee).Mul(quantity)

	percent := DiscountTier(in.Quantity)
	discountAmount := eligible.Mul(decimal.NewFromInt(percent)).Div(decimal.NewFromInt(100))

	return Breakdown{
		Subtotal:       eligible.Add(in.SpeedFee),
		Discount:       percent,
		DiscountAmount: discountAmount,
		Total:          eligible.Sub(discountAmount).Add(in.SpeedFee),
	}
}
