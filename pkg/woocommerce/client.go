package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tubeboost/storefront-backend/pkg/config"
	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
)

var (
	errBaseURLRequired     = errors.New("woocommerce base url is required")
	errCredentialsRequired = errors.New("woocommerce consumer key and secret are required")
	errLoggerRequired      = errors.New("woocommerce logger is required")
)

// Client talks to the WooCommerce REST API with centralized auth, logging,
// and error mapping. WooCommerce has no maintained Go SDK, so this wraps
// net/http directly.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiVersion     string
	consumerKey    string
	consumerSecret string
	logger         *logger.Logger
}

// APIError is the structured error body WooCommerce returns on failures.
type APIError struct {
	StatusCode int    `json:"-"`
	ErrCode    string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("woocommerce api error (%d %s): %s", e.StatusCode, e.ErrCode, e.Message)
}

// NewClient initializes the WooCommerce wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.WooCommerceConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	key := strings.TrimSpace(cfg.ConsumerKey)
	secret := strings.TrimSpace(cfg.ConsumerSecret)
	if key == "" || secret == "" {
		return nil, errCredentialsRequired
	}

	c := &Client{
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		baseURL:        baseURL,
		apiVersion:     strings.Trim(cfg.APIVersion, "/"),
		consumerKey:    key,
		consumerSecret: secret,
		logger:         logg,
	}

	logg.Info(ctx, "woocommerce client initialized")
	return c, nil
}

// BaseURL reports the configured shop base URL.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// Ping verifies the shop API answers authenticated requests.
func (c *Client) Ping(ctx context.Context) error {
	var out []json.RawMessage
	query := url.Values{"per_page": []string{"1"}}
	return c.do(ctx, http.MethodGet, "/products", query, nil, &out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint, err := c.endpoint(path, query)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build woocommerce url")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode woocommerce payload")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build woocommerce request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("woocommerce %s %s failed", method, path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read woocommerce response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return pkgerrors.Wrap(domainCodeForStatus(resp.StatusCode), apiErr, fmt.Sprintf("woocommerce %s %s failed", method, path))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode woocommerce response")
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	u, err := url.Parse(fmt.Sprintf("%s/wp-json/%s%s", c.baseURL, c.apiVersion, path))
	if err != nil {
		return "", err
	}
	q := u.Query()
	for key, values := range query {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	q.Set("consumer_key", c.consumerKey)
	q.Set("consumer_secret", c.consumerSecret)
	u.RawQuery = q.Encode()
	return u.String(), nil
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
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("woocommerce %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("woocommerce %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "key", "email", "phone", "address"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

// AsAPIError extracts a WooCommerce API error from an error chain.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
