package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	x402 "github.com/coinbase/x402-discovery"
	"github.com/coinbase/x402-discovery/types"
)

// ============================================================================
// HTTP Facilitator Client
// ============================================================================

// HTTPFacilitatorClient communicates with remote facilitator services over HTTP
type HTTPFacilitatorClient struct {
	url          string
	httpClient   *http.Client
	authProvider AuthProvider
	identifier   string
}

// AuthProvider generates authentication headers for facilitator requests
type AuthProvider interface {
	// GetAuthHeaders returns authentication headers for each endpoint
	GetAuthHeaders(ctx context.Context) (AuthHeaders, error)
}

// AuthHeaders contains authentication headers for facilitator endpoints
type AuthHeaders struct {
	Verify    map[string]string
	Settle    map[string]string
	Supported map[string]string
}

// FacilitatorConfig configures the HTTP facilitator client
type FacilitatorConfig struct {
	// URL is the base URL of the facilitator service
	URL string

	// HTTPClient is the HTTP client to use (optional)
	HTTPClient *http.Client

	// AuthProvider provides authentication headers (optional)
	AuthProvider AuthProvider

	// Timeout for requests (optional, defaults to 30s)
	Timeout time.Duration

	// Identifier for this facilitator (optional)
	Identifier string
}

// getSupportedRetries is the number of retry attempts for GetSupported on 429 rate limit errors
const getSupportedRetries = 3

// getSupportedRetryBaseDelay is the base delay for exponential backoff on retries
var getSupportedRetryBaseDelay = 1 * time.Second

// NewHTTPFacilitatorClient creates a new HTTP facilitator client
func NewHTTPFacilitatorClient(config *FacilitatorConfig) *HTTPFacilitatorClient {
	if config == nil {
		config = &FacilitatorConfig{}
	}

	url := config.URL
	if url == "" {
		url = x402.DefaultFacilitatorURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	identifier := config.Identifier
	if identifier == "" {
		identifier = url
	}

	return &HTTPFacilitatorClient{
		url:          url,
		httpClient:   httpClient,
		authProvider: config.AuthProvider,
		identifier:   identifier,
	}
}

// URL returns the facilitator base URL
func (c *HTTPFacilitatorClient) URL() string {
	return c.url
}

// Identifier returns the facilitator identifier
func (c *HTTPFacilitatorClient) Identifier() string {
	return c.identifier
}

// Verify asks the facilitator whether a payment payload satisfies the offer.
// The payload is opaque to this client and forwarded as-is.
func (c *HTTPFacilitatorClient) Verify(ctx context.Context, payload json.RawMessage, requirements types.PaymentRequirements) (*x402.VerifyResponse, error) {
	authHeaders, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	responseBody, status, err := c.post(ctx, "/verify", authHeaders.Verify, payload, requirements)
	if err != nil {
		return nil, fmt.Errorf("verify request failed: %w", err)
	}

	var verifyResponse x402.VerifyResponse
	if err := json.Unmarshal(responseBody, &verifyResponse); err != nil {
		return nil, x402.NewPaymentError(
			x402.ErrCodeInvalidResponse,
			fmt.Sprintf("failed to unmarshal verify response: %s", err.Error()),
			nil,
		)
	}

	// For non-200 responses, return an error with the details from the response
	if status != http.StatusOK {
		if verifyResponse.InvalidReason != "" {
			return nil, x402.NewPaymentError(
				verifyResponse.InvalidReason,
				verifyResponse.InvalidMessage,
				map[string]interface{}{"payer": verifyResponse.Payer},
			)
		}
		return nil, fmt.Errorf("facilitator verify failed (%d): %s", status, string(responseBody))
	}

	return &verifyResponse, nil
}

// Settle asks the facilitator to execute a verified payment
func (c *HTTPFacilitatorClient) Settle(ctx context.Context, payload json.RawMessage, requirements types.PaymentRequirements) (*x402.SettleResponse, error) {
	authHeaders, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	responseBody, status, err := c.post(ctx, "/settle", authHeaders.Settle, payload, requirements)
	if err != nil {
		return nil, fmt.Errorf("settle request failed: %w", err)
	}

	var settleResponse x402.SettleResponse
	if err := json.Unmarshal(responseBody, &settleResponse); err != nil {
		return nil, fmt.Errorf("facilitator settle failed (%d): %s", status, string(responseBody))
	}

	// For non-200 responses, return an error with the details from the response
	if status != http.StatusOK {
		if settleResponse.ErrorReason != "" {
			return nil, x402.NewPaymentError(
				settleResponse.ErrorReason,
				fmt.Sprintf("facilitator returned %d", status),
				map[string]interface{}{
					"payer":       settleResponse.Payer,
					"network":     string(settleResponse.Network),
					"transaction": settleResponse.Transaction,
				},
			)
		}
		return nil, x402.NewPaymentError(
			x402.ErrCodeSettlementFailed,
			fmt.Sprintf("facilitator settle failed (%d): %s", status, string(responseBody)),
			map[string]interface{}{"transaction": settleResponse.Transaction},
		)
	}

	return &settleResponse, nil
}

// GetSupported gets supported payment kinds.
// Retries up to 3 times with exponential backoff on 429 rate limit errors.
func (c *HTTPFacilitatorClient) GetSupported(ctx context.Context) (x402.SupportedResponse, error) {
	var lastErr error

	for attempt := 0; attempt < getSupportedRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/supported", nil)
		if err != nil {
			return x402.SupportedResponse{}, fmt.Errorf("failed to create supported request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")

		// Tokens are short lived, so every attempt signs a fresh set
		authHeaders, err := c.authHeaders(ctx)
		if err != nil {
			return x402.SupportedResponse{}, err
		}
		for k, v := range authHeaders.Supported {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return x402.SupportedResponse{}, fmt.Errorf("supported request failed: %w", err)
		}

		responseBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return x402.SupportedResponse{}, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			var supportedResponse x402.SupportedResponse
			if err := json.Unmarshal(responseBody, &supportedResponse); err != nil {
				return x402.SupportedResponse{}, fmt.Errorf("failed to decode supported response: %w", err)
			}
			return supportedResponse, nil
		}

		lastErr = fmt.Errorf("facilitator supported failed (%d): %s", resp.StatusCode, string(responseBody))

		// Retry on 429 with exponential backoff, except on the last attempt
		if resp.StatusCode == http.StatusTooManyRequests && attempt < getSupportedRetries-1 {
			delay := getSupportedRetryBaseDelay * time.Duration(1<<uint(attempt))
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return x402.SupportedResponse{}, ctx.Err()
			}
		}

		return x402.SupportedResponse{}, lastErr
	}

	return x402.SupportedResponse{}, lastErr
}

// ============================================================================
// Internal HTTP Methods
// ============================================================================

func (c *HTTPFacilitatorClient) authHeaders(ctx context.Context) (AuthHeaders, error) {
	if c.authProvider == nil {
		return AuthHeaders{}, nil
	}
	headers, err := c.authProvider.GetAuthHeaders(ctx)
	if err != nil {
		return AuthHeaders{}, fmt.Errorf("failed to get auth headers: %w", err)
	}
	return headers, nil
}

func (c *HTTPFacilitatorClient) post(ctx context.Context, path string, headers map[string]string, payload json.RawMessage, requirements types.PaymentRequirements) ([]byte, int, error) {
	requestBody := map[string]interface{}{
		"x402Version":         x402.ProtocolVersion,
		"paymentPayload":      payload,
		"paymentRequirements": requirements,
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	return responseBody, resp.StatusCode, nil
}

// ============================================================================
// Static Auth Provider
// ============================================================================

// StaticAuthProvider sends the same bearer token to every endpoint
type StaticAuthProvider struct {
	token string
}

// NewStaticAuthProvider creates an auth provider for a fixed API key
func NewStaticAuthProvider(token string) *StaticAuthProvider {
	return &StaticAuthProvider{token: token}
}

// GetAuthHeaders implements AuthProvider
func (p *StaticAuthProvider) GetAuthHeaders(_ context.Context) (AuthHeaders, error) {
	header := func() map[string]string {
		return map[string]string{"Authorization": "Bearer " + p.token}
	}
	return AuthHeaders{
		Verify:    header(),
		Settle:    header(),
		Supported: header(),
	}, nil
}

// FuncAuthProvider adapts a function to AuthProvider
type FuncAuthProvider struct {
	fn func(context.Context) (AuthHeaders, error)
}

// NewFuncAuthProvider creates an auth provider backed by fn
func NewFuncAuthProvider(fn func(context.Context) (AuthHeaders, error)) *FuncAuthProvider {
	return &FuncAuthProvider{fn: fn}
}

// GetAuthHeaders implements AuthProvider
func (p *FuncAuthProvider) GetAuthHeaders(ctx context.Context) (AuthHeaders, error) {
	return p.fn(ctx)
}
