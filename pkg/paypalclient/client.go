package paypalclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/plutov/paypal/v4"

	"github.com/tubeboost/storefront-backend/pkg/config"
	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
)

const (
	sandboxEnv = "sandbox"
	liveEnv    = "live"
)

var (
	errCredentialsRequired = errors.New("paypal client id and secret are required")
	errInvalidPayPalEnv    = fmt.Errorf("paypal environment must be %q or %q", sandboxEnv, liveEnv)
	errLoggerRequired      = errors.New("paypal logger is required")
)

// Client wraps the PayPal Orders API with centralized logging and error mapping.
type Client struct {
	sdk         *paypal.Client
	environment string
	logger      *logger.Logger
}

// IntentCreateParams describes the provider-side payment intent to open.
type IntentCreateParams struct {
	Amount      string
	Currency    string
	Description string
	InvoiceID   string
}

// CaptureResult is the settled outcome of a capture call.
type CaptureResult struct {
	IntentID      string
	TransactionID string
	Status        string
	Amount        string
	Currency      string
}

// NewClient initializes the PayPal wrapper and verifies the credentials by
// fetching an access token.
func NewClient(ctx context.Context, cfg config.PayPalConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	clientID := strings.TrimSpace(cfg.ClientID)
	secret := strings.TrimSpace(cfg.Secret)
	if clientID == "" || secret == "" {
		return nil, errCredentialsRequired
	}

	apiBase := paypal.APIBaseSandBox
	if env == liveEnv {
		apiBase = paypal.APIBaseLive
	}

	sdk, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("building paypal client: %w", err)
	}
	if _, err := sdk.GetAccessToken(ctx); err != nil {
		return nil, mapPayPalError(err, "authenticate")
	}

	logg.Info(ctx, fmt.Sprintf("paypal client initialized (%s)", env))
	return &Client{
		sdk:         sdk,
		environment: env,
		logger:      logg,
	}, nil
}

// Environment reports the normalized PayPal environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreateOrderIntent opens a provider-side payment intent and returns its id.
// The buyer approves it in the provider UI before capture.
func (c *Client) CreateOrderIntent(ctx context.Context, params IntentCreateParams) (string, error) {
	c.log(ctx, "request", "create_intent", map[string]any{
		"amount":   params.Amount,
		"currency": params.Currency,
	})

	units := []paypal.PurchaseUnitRequest{{
		Amount: &paypal.PurchaseUnitAmount{
			Currency: params.Currency,
			Value:    params.Amount,
		},
		Description: params.Description,
		InvoiceID:   params.InvoiceID,
	}}

	order, err := c.sdk.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		c.log(ctx, "error", "create_intent", map[string]any{"error": err.Error()})
		return "", mapPayPalError(err, "create intent")
	}

	c.log(ctx, "response", "create_intent", map[string]any{
		"intent_id": order.ID,
		"status":    order.Status,
	})
	return order.ID, nil
}

// Capture settles an approved payment intent.
func (c *Client) Capture(ctx context.Context, intentID string) (*CaptureResult, error) {
	c.log(ctx, "request", "capture", map[string]any{"intent_id": intentID})

	resp, err := c.sdk.CaptureOrder(ctx, intentID, paypal.CaptureOrderRequest{})
	if err != nil {
		c.log(ctx, "error", "capture", map[string]any{"error": err.Error()})
		return nil, mapPayPalError(err, "capture")
	}

	result := &CaptureResult{
		IntentID: resp.ID,
		Status:   resp.Status,
	}
	for _, unit := range resp.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, capture := range unit.Payments.Captures {
			result.TransactionID = capture.ID
			if capture.Amount != nil {
				result.Amount = capture.Amount.Value
				result.Currency = capture.Amount.Currency
			}
		}
	}

	c.log(ctx, "response", "capture", map[string]any{
		"intent_id":      result.IntentID,
		"transaction_id": result.TransactionID,
		"status":         result.Status,
	})
	return result, nil
}

// GetIntentStatus reads the current provider-side status of an intent.
func (c *Client) GetIntentStatus(ctx context.Context, intentID string) (string, error) {
	order, err := c.sdk.GetOrder(ctx, intentID)
	if err != nil {
		return "", mapPayPalError(err, "get intent")
	}
	return order.Status, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("paypal %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("paypal %s", phase))
	}
}

func mapPayPalError(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *paypal.ErrorResponse
	if errors.As(err, &apiErr) {
		status := 0
		if apiErr.Response != nil {
			status = apiErr.Response.StatusCode
		}
		return pkgerrors.Wrap(domainCodeForStatus(status), err, fmt.Sprintf("paypal %s failed", op))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("paypal %s failed", op))
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidPayPalEnv
	}
}
