package fedex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient. It performs
// synchronous, blocking round-trips with a fixed timeout; a timed-out call
// surfaces as a transport error and becomes a CarrierError upstream.
type HTTPAPIClient struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Token performs the OAuth2 client-credentials exchange. The token endpoint
// is the one call that takes a form body instead of JSON.
func (c *HTTPAPIClient) Token(ctx context.Context, form url.Values) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EndpointToken,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

// Rates posts a rate quote request.
func (c *HTTPAPIClient) Rates(ctx context.Context, bearer string, body *RateRequest) (*APIResponse, error) {
	return c.postJSON(ctx, bearer, EndpointRates, body)
}

// CreateShipment posts a shipment creation request.
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, bearer string, body *ShipRequest) (*APIResponse, error) {
	return c.postJSON(ctx, bearer, EndpointShipments, body)
}

// Track posts a tracking lookup.
func (c *HTTPAPIClient) Track(ctx context.Context, bearer string, body *TrackRequest) (*APIResponse, error) {
	return c.postJSON(ctx, bearer, EndpointTracking, body)
}

// ProofOfDelivery posts a proof-of-delivery document request.
func (c *HTTPAPIClient) ProofOfDelivery(ctx context.Context, bearer string, body *PODRequest) (*APIResponse, error) {
	return c.postJSON(ctx, bearer, EndpointProofOfDelivery, body)
}

func (c *HTTPAPIClient) postJSON(ctx context.Context, bearer, path string, body any) (*APIResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	return c.do(req)
}

func (c *HTTPAPIClient) do(req *http.Request) (*APIResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
