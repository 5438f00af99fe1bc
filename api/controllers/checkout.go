package controllers

import (
	"context"
	"net/http"

	"github.com/tubeboost/storefront-backend/api/middleware"
	"github.com/tubeboost/storefront-backend/api/responses"
	"github.com/tubeboost/storefront-backend/api/validators"
	"github.com/tubeboost/storefront-backend/pkg/logger"

	"github.com/tubeboost/storefront-backend/internal/customers"
	"github.com/tubeboost/storefront-backend/internal/orders"
)

type orderAssembler interface {
	Assemble(ctx context.Context, input orders.AssembleInput) (*orders.Result, error)
}

type createOrderRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Country   string `json:"country" validate:"required,len=2"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Phone     string `json:"phone"`

	PaymentMethod      string `json:"payment_method" validate:"required"`
	PaymentMethodTitle string `json:"payment_method_title"`
	CouponCode         string `json:"coupon_code"`
	CouponAmount       string `json:"coupon_amount"`
	CustomerNote       string `json:"customer_note"`
}

type createOrderResponse struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Total       string `json:"total"`
	Currency    string `json:"currency"`
	CustomerID  int64  `json:"customer_id"`
}

// CheckoutCreateOrder submits the session's cart as a shop order.
func CheckoutCreateOrder(svc orderAssembler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Assemble(r.Context(), orders.AssembleInput{
			SessionID: sessionID,
			Identity: customers.Identity{
				Email:     payload.Email,
				FirstName: payload.FirstName,
				LastName:  payload.LastName,
				Address1:  payload.Address1,
				City:      payload.City,
				State:     payload.State,
				Postcode:  payload.Postcode,
				Country:   payload.Country,
				Phone:     payload.Phone,
			},
			PaymentMethod:      payload.PaymentMethod,
			PaymentMethodTitle: payload.PaymentMethodTitle,
			CouponCode:         payload.CouponCode,
			CouponAmount:       payload.CouponAmount,
			CustomerNote:       payload.CustomerNote,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createOrderResponse{
			OrderID:     result.Order.ID,
			OrderNumber: result.Order.Number,
			Status:      result.Order.Status,
			Total:       result.Order.Total,
			Currency:    result.Order.Currency,
			CustomerID:  result.Customer.ID,
		})
	}
}
