package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tubeboost/storefront-backend/api/middleware"
	"github.com/tubeboost/storefront-backend/api/responses"
	"github.com/tubeboost/storefront-backend/api/validators"
	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"

	"github.com/tubeboost/storefront-backend/internal/cart"
	"github.com/tubeboost/storefront-backend/internal/linkcheck"
	"github.com/tubeboost/storefront-backend/internal/offerings"
	"github.com/tubeboost/storefront-backend/internal/pricing"
)

type cartService interface {
	AddItem(ctx context.Context, sessionID string, input cart.AddItemInput) (cart.Item, cart.Snapshot, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (cart.Snapshot, error)
	UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (cart.Snapshot, error)
	Clear(ctx context.Context, sessionID string) (cart.Snapshot, error)
	Get(ctx context.Context, sessionID string) (cart.Snapshot, error)
	LoadingOperations(sessionID string) []string
}

type cartItemResponse struct {
	ID              string               `json:"id"`
	OfferingSlug    string               `json:"offering_slug"`
	Quantity        int                  `json:"quantity"`
	UnitPrice       string               `json:"unit_price"`
	LineTotal       string               `json:"line_total"`
	SelectedOptions cart.SelectedOptions `json:"selected_options"`
	AddedAt         time.Time            `json:"added_at"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total string             `json:"total"`
}

func newCartResponse(snapshot cart.Snapshot) cartResponse {
	items := make([]cartItemResponse, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, cartItemResponse{
			ID:              item.ID,
			OfferingSlug:    item.OfferingSlug,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice.StringFixed(2),
			LineTotal:       item.Total().StringFixed(2),
			SelectedOptions: item.SelectedOptions,
			AddedAt:         item.AddedAt,
		})
	}
	return cartResponse{Items: items, Total: snapshot.Total.StringFixed(2)}
}

// CartGet returns the session's current cart snapshot.
func CartGet(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		snapshot, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

// CartOperations lists the in-flight operation keys so the UI can disable
// the matching controls.
func CartOperations(svc cartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		ops := svc.LoadingOperations(sessionID)
		if ops == nil {
			ops = []string{}
		}
		responses.WriteSuccess(w, map[string]any{"loading": ops})
	}
}

type addCartItemRequest struct {
	OfferingSlug    string `json:"offering_slug" validate:"required"`
	ServiceQuantity int64  `json:"service_quantity" validate:"required,min=1"`
	Quantity        int    `json:"quantity" validate:"omitempty,min=1"`
	Speed           string `json:"speed" validate:"omitempty,oneof=standard express"`
	Target          string `json:"target"`
	URL             string `json:"url" validate:"required"`
}

type addCartItemResponse struct {
	Item cartItemResponse `json:"item"`
	Cart cartResponse     `json:"cart"`
}

// CartAddItem prices a configured offering and appends it to the cart. The
// unit price is computed server-side here, once; the cart never re-derives it.
func CartAddItem(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload addCartItemRequest
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
		if !quantitySelectable(offering, payload.ServiceQuantity) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "service quantity is not selectable for this offering").
					WithDetails(map[string]any{"quantities": offering.ServiceQuantities}))
			return
		}

		link := linkcheck.Validate(payload.URL, offering.TargetKind)
		if !link.Valid {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, link.Err).
					WithDetails(map[string]string{"url": link.Err}))
			return
		}

		breakdown := pricing.Compute(breakdownInputFor(offering, payload.ServiceQuantity, payload.Speed, payload.Target))

		quantity := payload.Quantity
		if quantity == 0 {
			quantity = 1
		}

		item, snapshot, err := svc.AddItem(r.Context(), sessionID, cart.AddItemInput{
			OfferingSlug: offering.Slug,
			Quantity:     quantity,
			UnitPrice:    breakdown.Total,
			Options: cart.SelectedOptions{
				Speed:               payload.Speed,
				Target:              payload.Target,
				URL:                 link.CleanURL,
				SelectedQuantity:    payload.ServiceQuantity,
				BaseServiceQuantity: offering.DefaultQuantity,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		full := newCartResponse(snapshot)
		responses.WriteSuccessStatus(w, http.StatusCreated, addCartItemResponse{
			Item: cartItemResponse{
				ID:              item.ID,
				OfferingSlug:    item.OfferingSlug,
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice.StringFixed(2),
				LineTotal:       item.Total().StringFixed(2),
				SelectedOptions: item.SelectedOptions,
				AddedAt:         item.AddedAt,
			},
			Cart: full,
		})
	}
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartUpdateItem replaces an item's order multiplier.
func CartUpdateItem(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		itemID := chi.URLParam(r, "itemID")

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.UpdateQuantity(r.Context(), sessionID, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

// CartRemoveItem drops an item; unknown ids settle as a no-op.
func CartRemoveItem(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		itemID := chi.URLParam(r, "itemID")

		snapshot, err := svc.RemoveItem(r.Context(), sessionID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

// CartClear empties the session's cart.
func CartClear(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		snapshot, err := svc.Clear(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}
