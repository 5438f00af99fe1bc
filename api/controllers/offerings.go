package controllers

import (
	"net/http"

	"github.com/tubeboost/storefront-backend/api/responses"

	"github.com/tubeboost/storefront-backend/internal/offerings"
)

type offeringResponse struct {
	Slug            string  `json:"slug"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	SKU             string  `json:"sku"`
	TargetKind      string  `json:"target_kind"`
	BasePrice       string  `json:"base_price"`
	Quantities      []int64 `json:"quantities"`
	DefaultQuantity int64   `json:"default_quantity"`
	SpeedFee        string  `json:"speed_fee"`
	TargetFee       string  `json:"target_fee"`
}

// ListOfferings returns the storefront catalog.
func ListOfferings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog := offerings.All()
		out := make([]offeringResponse, 0, len(catalog))
		for _, offering := range catalog {
			out = append(out, offeringResponse{
				Slug:            offering.Slug,
				Name:            offering.Name,
				Description:     offering.Description,
				SKU:             offering.SKU(),
				TargetKind:      string(offering.TargetKind),
				BasePrice:       offering.BasePrice.String(),
				Quantities:      offering.ServiceQuantities,
				DefaultQuantity: offering.DefaultQuantity,
				SpeedFee:        offering.SpeedFee.String(),
				TargetFee:       offering.TargetFee.String(),
			})
		}
		responses.WriteSuccess(w, out)
	}
}
