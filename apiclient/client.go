package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	herdgate "github.com/herdtrack/herdgate"
	"github.com/herdtrack/herdgate/credstore"
)

const unknownErrorDetail = "unknown error"

// APIError is the normalized shape of every non-2xx backend response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
}

// ErrorDetail returns the backend's human-readable message. The session
// engine surfaces it inline on login and registration forms.
func (e *APIError) ErrorDetail() string {
	return e.Detail
}

// Client performs JSON requests against the backend. Client instances are
// configured at construction and then immutable; methods are safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	creds   credstore.Store

	tokenEndpoint    string
	profileEndpoint  string
	registerEndpoint string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Transport timeouts are
// its responsibility, not this package's.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithAuthEndpoints overrides the auth endpoint paths. Empty values keep the
// defaults.
func WithAuthEndpoints(token, profile, register string) Option {
	return func(c *Client) {
		if token != "" {
			c.tokenEndpoint = token
		}
		if profile != "" {
			c.profileEndpoint = profile
		}
		if register != "" {
			c.registerEndpoint = register
		}
	}
}

// New creates a Client for the backend at baseURL, reading the bearer token
// through creds on every request.
func New(baseURL string, creds credstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		http:             http.DefaultClient,
		creds:            creds,
		tokenEndpoint:    defaultTokenEndpoint,
		profileEndpoint:  defaultProfileEndpoint,
		registerEndpoint: defaultRegisterEndpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a Client from the engine's API configuration
// section, honoring its base URL and endpoint overrides.
func NewFromConfig(cfg herdgate.APIConfig, creds credstore.Store, opts ...Option) *Client {
	merged := append([]Option{
		WithAuthEndpoints(cfg.TokenEndpoint, cfg.ProfileEndpoint, cfg.RegisterEndpoint),
	}, opts...)
	return New(cfg.BaseURL, creds, merged...)
}

// Request performs method against endpoint, JSON-encoding body when non-nil
// and decoding the response into out when non-nil. Non-2xx responses return
// an [*APIError]; transport failures return the wrapped cause.
func (c *Client) Request(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	// Read-through on every call; the store is the single source of truth.
	if c.creds != nil {
		if token, ok := c.creds.Read(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func normalizeError(resp *http.Response) *APIError {
	apiErr := &APIError{
		Status: resp.StatusCode,
		Detail: unknownErrorDetail,
	}

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
		apiErr.Detail = body.Detail
	}

	return apiErr
}
