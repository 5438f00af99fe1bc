package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
	"github.com/tubeboost/storefront-backend/pkg/woocommerce"
)

type customerAPI interface {
	FindCustomersByEmail(ctx context.Context, email string) ([]woocommerce.Customer, error)
	CreateCustomer(ctx context.Context, params woocommerce.CustomerCreateParams) (*woocommerce.Customer, error)
	UpdateCustomerBilling(ctx context.Context, customerID int64, billing woocommerce.Address) (*woocommerce.Customer, error)
}

// Resolver maps a checkout identity onto exactly one shop customer record.
type Resolver struct {
	shop customerAPI
	logg *logger.Logger
}

// NewResolver builds a customer resolver over the shop client.
func NewResolver(shop customerAPI, logg *logger.Logger) (*Resolver, error) {
	if shop == nil {
		return nil, fmt.Errorf("shop client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Resolver{shop: shop, logg: logg}, nil
}

// Identity is the buyer detail block collected at checkout.
type Identity struct {
	Email     string
	FirstName string
	LastName  string
	Address1  string
	City      string
	State     string
	Postcode  string
	Country   string
	Phone     string
}

func (id Identity) billing() woocommerce.Address {
	return woocommerce.Address{
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Address1:  id.Address1,
		City:      id.City,
		State:     id.State,
		Postcode:  id.Postcode,
		Country:   id.Country,
		Email:     id.Email,
		Phone:     id.Phone,
	}
}

// ResolveOrCreate finds the customer record for the identity's email,
// creating one when the shop has never seen it. An existing customer gets
// its billing block refreshed with the latest checkout details. When the
// shop rejects the create as a duplicate but the record still cannot be
// found, the state is unrecoverable here and surfaces as an account
// mismatch for manual resolution.
func (r *Resolver) ResolveOrCreate(ctx context.Context, identity Identity) (*woocommerce.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	identity.Email = email

	existing, err := r.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		updated, err := r.shop.UpdateCustomerBilling(ctx, existing.ID, identity.billing())
		if err != nil {
			// The customer exists; stale billing is preferable to failing
			// the whole checkout over a cosmetic update.
			lctx := r.logg.WithField(ctx, "customer_id", existing.ID)
			r.logg.Warn(lctx, "billing refresh failed, continuing with existing record")
			return existing, nil
		}
		return updated, nil
	}

	created, err := r.shop.CreateCustomer(ctx, woocommerce.CustomerCreateParams{
		Email:     email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Username:  deriveUsername(email),
		Billing:   identity.billing(),
		Shipping:  identity.billing(),
	})
	if err == nil {
		return created, nil
	}

	if !isDuplicateError(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}

	// Duplicate rejection means someone registered between our lookup and
	// the create, or the account is hidden from the directory query. Retry
	// the lookup once before declaring the state unrecoverable.
	r.logg.Warn(ctx, "customer create rejected as duplicate, re-querying directory")
	existing, lookupErr := r.findByEmail(ctx, email)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if existing == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAccountMismatch, err, "account exists but is not resolvable").
			WithDetails(map[string]string{"email": email})
	}
	return existing, nil
}

func (r *Resolver) findByEmail(ctx context.Context, email string) (*woocommerce.Customer, error) {
	candidates, err := r.shop.FindCustomersByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up customer")
	}
	// The directory query can fuzzy-match; only an exact email hit counts.
	for i := range candidates {
		if strings.EqualFold(candidates[i].Email, email) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// deriveUsername builds a shop username from the email local part plus a
// short random token, since usernames must be unique across the shop while
// local parts are not.
func deriveUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	sanitized := b.String()
	if sanitized == "" {
		sanitized = "customer"
	}
	return sanitized + "-" + uuid.NewString()[:8]
}

func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "already") || strings.Contains(message, "exists")
}
