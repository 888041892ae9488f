package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"retailcrm-gateway/internal/core/config"
	"retailcrm-gateway/internal/core/httpclient"
	"retailcrm-gateway/internal/core/logger"

	"go.uber.org/zap"
)

// apiVersionPath is appended to the configured base URL; all endpoints live
// under the versioned API root.
const apiVersionPath = "/api/v5"

// apiKeyHeader is the header RetailCRM expects the key under.
const apiKeyHeader = "X-API-KEY"

// ErrMissingBaseURL is returned by New when the CRM base URL is empty.
var ErrMissingBaseURL = errors.New("crm: base URL is empty")

// ErrMissingAPIKey is returned by New when the CRM API key is empty.
var ErrMissingAPIKey = errors.New("crm: API key is empty")

// Client talks to the RetailCRM v5 HTTP API. It holds no mutable state and
// is safe for concurrent use; one instance is shared across requests.
type Client struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// apiRoot is the versioned request origin, e.g. "https://demo.retailcrm.ru/api/v5".
	apiRoot string
	// apiKey is sent on every request.
	apiKey string
}

// New creates a Client from static configuration. Empty credentials are a
// configuration error; the process must not serve traffic without them.
func New(cfg config.CRMConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &Client{
		client:  httpclient.NewClient(time.Duration(cfg.TimeoutSeconds) * time.Second),
		apiRoot: strings.TrimRight(cfg.BaseURL, "/") + apiVersionPath,
		apiKey:  cfg.APIKey,
	}, nil
}

// get performs an authenticated GET. Any HTTP response becomes a Result;
// only transport-level failures return an error.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*Result, error) {
	u := c.apiRoot + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crm request failed: %w", err)
	}
	defer resp.Body.Close()

	return newResult(resp)
}

// post performs an authenticated POST with a JSON body. Same contract as get.
func (c *Client) post(ctx context.Context, endpoint string, params url.Values, body interface{}) (*Result, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	u := c.apiRoot + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crm request failed: %w", err)
	}
	defer resp.Body.Close()

	return newResult(resp)
}

// ListCustomers fetches a customer page. Each filter entry becomes one
// filter[<key>] query parameter.
func (c *Client) ListCustomers(ctx context.Context, limit, page int, filters map[string]string) (*Result, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	for k, v := range filters {
		params.Set("filter["+k+"]", v)
	}

	res, err := c.get(ctx, "/customers", params)
	if err != nil {
		logger.Get().Error("Customer list request failed", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// CreateCustomer creates a customer in the given site context.
// The customer object arrives at the CRM as a JSON-encoded string value,
// not a nested object; that is what the upstream API requires.
func (c *Client) CreateCustomer(ctx context.Context, customer Customer, site string) (*Result, error) {
	encoded, err := json.Marshal(customer)
	if err != nil {
		return nil, fmt.Errorf("failed to encode customer: %w", err)
	}

	body := map[string]interface{}{
		"site":     site,
		"customer": string(encoded),
	}

	res, err := c.post(ctx, "/customers/create", nil, body)
	if err != nil {
		logger.Get().Error("Customer create request failed", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// GetCustomer fetches a single customer. by selects the identifier namespace
// customerID is interpreted in and defaults to the external-id namespace.
func (c *Client) GetCustomer(ctx context.Context, customerID, site, by string) (*Result, error) {
	if by == "" {
		by = "externalId"
	}

	params := url.Values{}
	params.Set("site", site)
	params.Set("by", by)

	res, err := c.get(ctx, "/customers/"+url.PathEscape(customerID), params)
	if err != nil {
		logger.Get().Error("Customer fetch request failed",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

// CreateOrder creates an order. The order travels as a JSON-encoded string,
// and the site key is omitted entirely when site is nil; sending an empty
// string instead is not equivalent for the CRM.
func (c *Client) CreateOrder(ctx context.Context, order Order, site *string) (*Result, error) {
	encoded, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	body := map[string]interface{}{
		"order": string(encoded),
	}
	if site != nil {
		body["site"] = *site
	}

	res, err := c.post(ctx, "/orders/create", nil, body)
	if err != nil {
		logger.Get().Error("Order create request failed", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// ListOrdersByCustomer fetches the orders of one customer. site is sent only
// when provided and non-empty.
func (c *Client) ListOrdersByCustomer(ctx context.Context, customerID int, site *string, limit, page int) (*Result, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	params.Set("filter[customerId]", strconv.Itoa(customerID))
	if site != nil && *site != "" {
		params.Set("site", *site)
	}

	res, err := c.get(ctx, "/orders", params)
	if err != nil {
		logger.Get().Error("Order list request failed",
			zap.Int("customer_id", customerID),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

// CreateOrderPayment attaches a payment to an order. The payment payload is
// opaque to this gateway and travels as a JSON-encoded string.
func (c *Client) CreateOrderPayment(ctx context.Context, payment map[string]interface{}, site string) (*Result, error) {
	encoded, err := json.Marshal(payment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment: %w", err)
	}

	body := map[string]interface{}{
		"site":    site,
		"payment": string(encoded),
	}

	res, err := c.post(ctx, "/orders/payments/create", nil, body)
	if err != nil {
		logger.Get().Error("Payment create request failed", zap.Error(err))
		return nil, err
	}
	return res, nil
}
