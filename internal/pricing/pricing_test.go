package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDiscountTierBreakpoints(t *testing.T) {
	t.Parallel()

	cases := []struct {
		quantity int64
		want     int64
	}{
		{0, 0},
		{1500, 0},
		{2499, 0},
		{2500, 10},
		{4999, 10},
		{5000, 20},
		{9999, 20},
		{10000, 30},
		{19999, 30},
		{20000, 40},
		{1000000, 40},
	}
	for _, tc := range cases {
		if got := DiscountTier(tc.quantity); got != tc.want {
			t.Fatalf("DiscountTier(%d) = %d, want %d", tc.quantity, got, tc.want)
		}
	}
}

func TestDiscountTierMonotone(t *testing.T) {
	t.Parallel()

	quantities := []int64{0, 1, 100, 2499, 2500, 4999, 5000, 9999, 10000, 19999, 20000, 50000}
	prev := int64(-1)
	for _, q := range quantities {
		got := DiscountTier(q)
		if got < prev {
			t.Fatalf("discount decreased at quantity %d: %d < %d", q, got, prev)
		}
		prev = got
	}
}

func TestComputeWorkedExample(t *testing.T) {
	t.Parallel()

	// 0.02 per view x 5,000 views lands in the 20% tier.
	got := Compute(BreakdownInput{
		BasePrice: decimal.RequireFromString("0.02"),
		Quantity:  5000,
	})

	if got.Discount != 20 {
		t.Fatalf("expected 20%% tier, got %d", got.Discount)
	}
	if !got.Subtotal.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected subtotal 100, got %s", got.Subtotal)
	}
	if !got.DiscountAmount.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected discount amount 20, got %s", got.DiscountAmount)
	}
	if !got.Total.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("expected total 80, got %s", got.Total)
	}
}

func TestComputeSpeedFeeOutsideDiscount(t *testing.T) {
	t.Parallel()

	withSpeed := Compute(BreakdownInput{
		BasePrice: decimal.RequireFromString("0.02"),
		Quantity:  5000,
		SpeedFee:  decimal.RequireFromString("4.99"),
	})
	withoutSpeed := Compute(BreakdownInput{
		BasePrice: decimal.RequireFromString("0.02"),
		Quantity:  5000,
	})

	// The flat speed surcharge appears identically in subtotal and total
	// and never grows the discount.
	if !withSpeed.DiscountAmount.Equal(withoutSpeed.DiscountAmount) {
		t.Fatalf("speed fee must not change the discount amount: %s vs %s",
			withSpeed.DiscountAmount, withoutSpeed.DiscountAmount)
	}
	diff := withSpeed.Total.Sub(withoutSpeed.Total)
	if !diff.Equal(decimal.RequireFromString("4.99")) {
		t.Fatalf("expected flat 4.99 difference, got %s", diff)
	}
}

func TestComputeTargetFeeInsideDiscount(t *testing.T) {
	t.Parallel()

	got := Compute(BreakdownInput{
		BasePrice: decimal.RequireFromString("0.01"),
		Quantity:  2500,
		TargetFee: decimal.RequireFromString("0.01"),
	})

	// (0.01 + 0.01) x 2500 = 50.00 eligible, 10% tier.
	if !got.DiscountAmount.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("expected target fee to be discount-eligible, got %s", got.DiscountAmount)
	}
}

func TestComputeInvariantTotalEqualsSubtotalMinusDiscount(t *testing.T) {
	t.Parallel()

	inputs := []BreakdownInput{
		{BasePrice: decimal.RequireFromString("0.02"), Quantity: 1500},
		{BasePrice: decimal.RequireFromString("0.02"), Quantity: 5000, SpeedFee: decimal.RequireFromString("9.99")},
		{BasePrice: decimal.RequireFromString("0.005"), Quantity: 20000, TargetFee: decimal.RequireFromString("0.002")},
		{BasePrice: decimal.RequireFromString("1.337"), Quantity: 10000, SpeedFee: decimal.RequireFromString("0.01"), TargetFee: decimal.RequireFromString("0.333")},
	}
	for _, in := range inputs {
		got := Compute(in)
		if !got.Total.Equal(got.Subtotal.Sub(got.DiscountAmount)) {
			t.Fatalf("invariant broken for %+v: total=%s subtotal=%s discount=%s",
				in, got.Total, got.Subtotal, got.DiscountAmount)
		}
	}
}
