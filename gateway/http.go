package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"payconf/circuit"
)

// simulatorHeader marks calls as driven against the internal simulator.
const simulatorHeader = "INTERNAL"

// HTTPClient is the real transport implementation. It authenticates with
// Basic keys already in header form (the sandbox environment file carries
// them pre-encoded), sends the simulator marker on mutating calls, and
// optionally runs every call through a per-endpoint-class circuit breaker.
type HTTPClient struct {
	baseURL    string
	publicKey  string
	privateKey string
	httpClient *http.Client
	breaker    circuit.Breaker
}

var _ Client = (*HTTPClient)(nil)

// HTTPClientOption configures the HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(hc *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithBreaker enables circuit breaker protection keyed by endpoint class.
func WithBreaker(b circuit.Breaker) HTTPClientOption {
	return func(c *HTTPClient) {
		c.breaker = b
	}
}

// NewHTTPClient creates a transport client for the given base URL and key
// pair.
func NewHTTPClient(baseURL, publicKey, privateKey string, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicKey:  publicKey,
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues an authenticated GET.
func (c *HTTPClient) Get(ctx context.Context, path string, role Role) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, role, nil)
}

// Post issues an authenticated POST with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, role Role, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, role, body)
}

// Put issues an authenticated PUT with a JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, role Role, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, role, body)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, role Role, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
	}

	if c.breaker == nil {
		return c.roundTrip(ctx, method, path, role, payload)
	}

	var respBody []byte
	cb := c.breaker.Get(endpointClass(path))
	err := cb.Execute(ctx, func() error {
		var innerErr error
		respBody, innerErr = c.roundTrip(ctx, method, path, role, payload)
		return innerErr
	})
	return respBody, err
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, role Role, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	key := c.publicKey
	if role == AuthPrivate {
		key = c.privateKey
	}
	req.Header.Set("Authorization", "Basic "+key)
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Simulator", simulatorHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Method:      method,
			Path:        path,
			StatusCode:  resp.StatusCode,
			Body:        respBody,
			RequestBody: payload,
		}
	}

	return respBody, nil
}

// endpointClass extracts the breaker key from a path: the first segment,
// e.g. "/payments/{id}/settlements" -> "payments".
func endpointClass(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}
