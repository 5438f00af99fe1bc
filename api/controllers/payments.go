package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tubeboost/storefront-backend/api/middleware"
	"github.com/tubeboost/storefront-backend/api/responses"
	"github.com/tubeboost/storefront-backend/api/validators"
	"github.com/tubeboost/storefront-backend/pkg/logger"

	"github.com/tubeboost/storefront-backend/internal/payments"
	"github.com/tubeboost/storefront-backend/internal/receipts"
)

type paymentService interface {
	CreateIntent(ctx context.Context, sessionID string, buyer payments.Buyer) (*payments.Intent, error)
	Capture(ctx context.Context, input payments.CaptureInput) (*receipts.Receipt, error)
	Cancel(ctx context.Context, sessionID, intentID string) (*payments.Cancellation, error)
}

type createIntentRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Country   string `json:"country" validate:"required,len=2"`
}

// PaymentsCreateIntent opens a provider payment intent for the cart total.
func PaymentsCreateIntent(svc paymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.CreateIntent(r.Context(), sessionID, payments.Buyer{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Email:     payload.Email,
			Country:   payload.Country,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}

type captureRequest struct {
	OrderID int64  `json:"order_id"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// PaymentsCapture settles a buyer-approved intent.
func PaymentsCapture(svc paymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		intentID := chi.URLParam(r, "intentID")

		var payload captureRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Capture(r.Context(), payments.CaptureInput{
			SessionID: sessionID,
			IntentID:  intentID,
			OrderID:   payload.OrderID,
			Email:     payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}

// PaymentsCancel records a buyer-initiated cancel. Neutral outcome: 200,
// nothing about the cart or intent changes.
func PaymentsCancel(svc paymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		intentID := chi.URLParam(r, "intentID")

		cancellation, err := svc.Cancel(r.Context(), sessionID, intentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cancellation)
	}
}
