package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/tubeboost/storefront-backend/pkg/config"
	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
	"github.com/tubeboost/storefront-backend/pkg/metrics"
	"github.com/tubeboost/storefront-backend/pkg/paypalclient"

	"github.com/tubeboost/storefront-backend/internal/cart"
	"github.com/tubeboost/storefront-backend/internal/receipts"
)

type providerAPI interface {
	CreateOrderIntent(ctx context.Context, params paypalclient.IntentCreateParams) (string, error)
	Capture(ctx context.Context, intentID string) (*paypalclient.CaptureResult, error)
	GetIntentStatus(ctx context.Context, intentID string) (string, error)
}

type cartStore interface {
	Get(ctx context.Context, sessionID string) (cart.Snapshot, error)
	Clear(ctx context.Context, sessionID string) (cart.Snapshot, error)
}

type guardStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CaptureGuardKey(intentID string) string
}

type receiptMirror interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ReceiptKey(sessionID string) string
}

type receiptWriter interface {
	Create(ctx context.Context, receipt *receipts.Receipt) error
}

// Service drives the provider-side payment handshake: open an intent for
// the cart total, capture it once the buyer approves, or record a neutral
// cancellation when they back out.
type Service struct {
	provider providerAPI
	carts    cartStore
	guard    guardStore
	mirror   receiptMirror
	store    receiptWriter
	logg     *logger.Logger
	checkout *metrics.CheckoutMetrics

	cfg        config.CheckoutConfig
	receiptTTL time.Duration
}

// NewService wires the payment service.
func NewService(provider providerAPI, carts cartStore, guard guardStore, mirror receiptMirror, store receiptWriter, logg *logger.Logger, checkout *metrics.CheckoutMetrics, cfg config.CheckoutConfig, receiptTTL time.Duration) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if guard == nil {
		return nil, fmt.Errorf("guard store required")
	}
	if mirror == nil {
		return nil, fmt.Errorf("receipt mirror required")
	}
	if store == nil {
		return nil, fmt.Errorf("receipt writer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		provider:   provider,
		carts:      carts,
		guard:      guard,
		mirror:     mirror,
		store:      store,
		logg:       logg,
		checkout:   checkout,
		cfg:        cfg,
		receiptTTL: receiptTTL,
	}, nil
}

// Buyer is the identity block validated before any provider call.
type Buyer struct {
	FirstName string
	LastName  string
	Email     string
	Country   string
}

func (b Buyer) validate() error {
	missing := []string{}
	if strings.TrimSpace(b.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(b.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(b.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(b.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer details incomplete").
			WithDetails(map[string][]string{"missing": missing})
	}
	if _, err := mail.ParseAddress(b.Email); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "email address is not valid")
	}
	return nil
}

// Intent describes an opened provider-side payment intent.
type Intent struct {
	IntentID string `json:"intent_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// CreateIntent opens a provider payment intent for the session's cart
// total. Buyer details are validated locally first so an obviously broken
// form never costs a provider round trip.
func (s *Service) CreateIntent(ctx context.Context, sessionID string, buyer Buyer) (*Intent, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := buyer.validate(); err != nil {
		return nil, err
	}

	snapshot, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	amount := snapshot.Total.StringFixed(2)
	ctx, cancel := context.WithTimeout(ctx, s.cfg.IntentTimeout)
	defer cancel()

	intentID, err := s.provider.CreateOrderIntent(ctx, paypalclient.IntentCreateParams{
		Amount:      amount,
		Currency:    s.cfg.Currency,
		Description: fmt.Sprintf("TubeBoost order (%d items)", len(snapshot.Items)),
		InvoiceID:   fmt.Sprintf("%s-%d", sessionID, time.Now().Unix()),
	})
	if err != nil {
		return nil, err
	}

	lctx := s.logg.WithFields(ctx, map[string]any{"intent_id": intentID, "amount": amount})
	s.logg.Info(lctx, "payment intent opened")
	return &Intent{IntentID: intentID, Amount: amount, Currency: s.cfg.Currency}, nil
}

// CaptureInput binds a buyer-approved intent to the order it pays for.
type CaptureInput struct {
	SessionID string
	IntentID  string
	OrderID   int64
	Email     string
}

// Capture settles an approved intent exactly once. A redis guard keyed on
// the intent id rejects concurrent or repeated captures; the guard is
// released on failure so the buyer can retry. Success is the only path
// that clears the cart.
func (s *Service) Capture(ctx context.Context, input CaptureInput) (*receipts.Receipt, error) {
	if input.SessionID == "" || input.IntentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id and intent id are required")
	}

	guardKey := s.guard.CaptureGuardKey(input.IntentID)
	acquired, err := s.guard.SetNX(ctx, guardKey, time.Now().UTC().Format(time.RFC3339), s.cfg.CaptureGuardTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire capture guard")
	}
	if !acquired {
		s.checkout.IncCapture("duplicate")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "capture already in progress or completed for this intent")
	}

	captureCtx, cancel := context.WithTimeout(ctx, s.cfg.CaptureTimeout)
	defer cancel()

	result, err := s.provider.Capture(captureCtx, input.IntentID)
	if err != nil {
		// Release the guard so a transient provider failure stays retryable.
		if delErr := s.guard.Del(ctx, guardKey); delErr != nil {
			s.logg.Error(ctx, "releasing capture guard failed", delErr)
		}
		s.checkout.IncCapture("failed")
		return nil, err
	}

	receipt := &receipts.Receipt{
		IntentID:      result.IntentID,
		TransactionID: result.TransactionID,
		OrderID:       input.OrderID,
		SessionID:     input.SessionID,
		Email:         input.Email,
		Amount:        result.Amount,
		Currency:      result.Currency,
		CapturedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, receipt); err != nil {
		// The money moved; losing the durable row must not fail the buyer.
		s.logg.Error(ctx, "persisting receipt failed", err)
	}
	s.mirrorReceipt(ctx, input.SessionID, receipt)

	if _, err := s.carts.Clear(ctx, input.SessionID); err != nil {
		s.logg.Error(ctx, "clearing cart after capture failed", err)
	}

	s.checkout.IncCapture("success")
	lctx := s.logg.WithFields(ctx, map[string]any{
		"intent_id":      receipt.IntentID,
		"transaction_id": receipt.TransactionID,
	})
	s.logg.Info(lctx, "payment captured")
	return receipt, nil
}

// Cancellation reports a buyer-initiated cancel. It is a neutral outcome,
// not a failure: the cart and any open intent stay as they were.
type Cancellation struct {
	IntentID string `json:"intent_id"`
	Status   string `json:"status"`
}

// Cancel records that the buyer backed out of the provider flow. Any held
// capture guard is released so a later retry starts clean.
func (s *Service) Cancel(ctx context.Context, sessionID, intentID string) (*Cancellation, error) {
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id is required")
	}

	if err := s.guard.Del(ctx, s.guard.CaptureGuardKey(intentID)); err != nil {
		s.logg.Error(ctx, "releasing capture guard on cancel failed", err)
	}

	lctx := s.logg.WithSessionID(ctx, sessionID)
	lctx = s.logg.WithField(lctx, "intent_id", intentID)
	s.logg.Info(lctx, "payment cancelled by buyer")
	return &Cancellation{IntentID: intentID, Status: "cancelled"}, nil
}

func (s *Service) mirrorReceipt(ctx context.Context, sessionID string, receipt *receipts.Receipt) {
	payload, err := json.Marshal(receipt)
	if err != nil {
		s.logg.Error(ctx, "encoding receipt mirror failed", err)
		return
	}
	key := s.mirror.ReceiptKey(sessionID)
	if err := s.mirror.Set(ctx, key, string(payload), s.receiptTTL); err != nil {
		s.logg.Error(ctx, "writing receipt mirror failed", err)
	}
}
