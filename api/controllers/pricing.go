package controllers

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tubeboost/storefront-backend/api/responses"
	"github.com/tubeboost/storefront-backend/api/validators"
	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"

	"github.com/tubeboost/storefront-backend/internal/offerings"
	"github.com/tubeboost/storefront-backend/internal/pricing"
)

const (
	speedStandard = "standard"
	speedExpress  = "express"
)

type quoteRequest struct {
	OfferingSlug string `json:"offering_slug" validate:"required"`
	Quantity     int64  `json:"quantity" validate:"required,min=1"`
	Speed        string `json:"speed" validate:"omitempty,oneof=standard express"`
	Target       string `json:"target"`
}

type quoteResponse struct {
	OfferingSlug    string `json:"offering_slug"`
	Quantity        int64  `json:"quantity"`
	Subtotal        string `json:"subtotal"`
	DiscountPercent int64  `json:"discount_percent"`
	DiscountAmount  string `json:"discount_amount"`
	Total           string `json:"total"`
}

// PricingQuote prices one offering configuration without touching the cart.
// The UI calls it on every knob change for live totals.
func PricingQuote(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offering, ok := offerings.BySlug(payload.OfferingSlug)
		if !ok {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown offering %q", payload.OfferingSlug)))
			return
		}
		if !quantitySelectable(offering, payload.Quantity) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "quantity is not selectable for this offering").
					WithDetails(map[string]any{"quantities": offering.ServiceQuantities}))
			return
		}

		breakdown := pricing.Compute(breakdownInputFor(offering, payload.Quantity, payload.Speed, payload.Target))
		responses.WriteSuccess(w, quoteResponse{
			OfferingSlug:    offering.Slug,
			Quantity:        payload.Quantity,
			Subtotal:        breakdown.Subtotal.StringFixed(2),
			DiscountPercent: breakdown.Discount,
			DiscountAmount:  breakdown.DiscountAmount.StringFixed(2),
			Total:           breakdown.Total.StringFixed(2),
		})
	}
}

func breakdownInputFor(offering offerings.Offering, quantity int64, speed, target string) pricing.BreakdownInput {
	in := pricing.BreakdownInput{
		BasePrice: offering.BasePrice,
		Quantity:  quantity,
		SpeedFee:  decimal.Zero,
		TargetFee: decimal.Zero,
	}
	if speed == speedExpress {
		in.SpeedFee = offering.SpeedFee
	}
	if target != "" {
		in.TargetFee = offering.TargetFee
	}
	return in
}

func quantitySelectable(offering offerings.Offering, quantity int64) bool {
	for _, q := range offering.ServiceQuantities {
		if q == quantity {
			return true
		}
	}
	return false
}
