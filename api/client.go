// Package api implements a typed HTTP client for the CoinGate merchant API.
// It covers the three calls the gateway depends on: order creation, order
// lookup, and the auth-token connectivity test.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ============================================================================
// Client
// ============================================================================

// LiveBaseURL is the production API endpoint.
const LiveBaseURL = "https://api.coingate.com/v2"

// SandboxBaseURL is the sandbox API endpoint used in test mode.
const SandboxBaseURL = "https://api-sandbox.coingate.com/v2"

// defaultTimeout bounds every API call when no HTTP client is supplied.
const defaultTimeout = 30 * time.Second

// Config configures the API client.
type Config struct {
	// Token is the merchant API auth token.
	Token string

	// Sandbox selects the sandbox endpoint instead of the live one.
	Sandbox bool

	// BaseURL overrides the endpoint derived from Sandbox (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *http.Client

	// Timeout for requests (optional, defaults to 30s). Ignored when
	// HTTPClient is set.
	Timeout time.Duration

	// AppInfo identifies the integration in the User-Agent header
	// (optional).
	AppInfo string
}

// Client talks to the CoinGate API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	appInfo    string
}

// NewClient creates an API client for the given credentials.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		if config.Sandbox {
			baseURL = SandboxBaseURL
		} else {
			baseURL = LiveBaseURL
		}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return &Client{
		baseURL:    baseURL,
		token:      config.Token,
		httpClient: httpClient,
		appInfo:    config.AppInfo,
	}
}

// ============================================================================
// Errors
// ============================================================================

// APIError is a failed response from the processor.
type APIError struct {
	Status  int    `json:"-"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("coingate api error (%d) %s: %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("coingate api error (%d): %s", e.Status, e.Message)
}

// ============================================================================
// API Calls
// ============================================================================

// CreateOrder creates a payment order at the processor and returns it with
// the invoice token and hosted payment URL populated.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create order request: %w", err)
	}

	var order Order
	if err := c.do(ctx, "POST", "/orders", bytes.NewReader(body), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches a payment order by its processor-side numeric id. This is
// the authoritative read the callback reconciler trusts.
func (c *Client) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var order Order
	if err := c.do(ctx, "GET", fmt.Sprintf("/orders/%d", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// TestConnection checks whether the given token is accepted by the processor
// in the given mode. A false return with nil error means the processor
// rejected the credentials.
func TestConnection(ctx context.Context, token string, sandbox bool) (bool, error) {
	client := NewClient(&Config{Token: token, Sandbox: sandbox})
	return client.TestConnection(ctx)
}

// TestConnection checks the client's own credentials against /auth/test.
func (c *Client) TestConnection(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/auth/test", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create auth test request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("auth test request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return false, nil
	default:
		return false, &APIError{Status: resp.StatusCode, Message: "unexpected auth test response"}
	}
}

// ============================================================================
// Internal
// ============================================================================

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s request failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(responseBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(responseBody)
		}
		return apiErr
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
	if c.appInfo != "" {
		req.Header.Set("User-Agent", c.appInfo)
	}
}
