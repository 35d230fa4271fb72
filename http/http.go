// Package http binds the UCP contract to net/http: a consumer-side client
// over the standard HTTP client and a merchant-side Service exposing the
// discovery, search, and checkout routes. Framework adapters for gin and
// echo live under pkg/.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ucp "github.com/ucp-foundation/ucp/go"
)

// DefaultTimeout bounds every protocol GET. Callers must not hang
// indefinitely on an unresponsive merchant.
const DefaultTimeout = 5 * time.Second

// ============================================================================
// Consumer side
// ============================================================================

type clientConfig struct {
	httpClient *http.Client
	timeout    time.Duration
	core       []ucp.ClientOption
}

// ClientOption configures the HTTP client
type ClientOption func(*clientConfig)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithHTTPClient sets the underlying HTTP client, e.g. to install a custom
// transport
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithCacheTTL bounds discovery document reuse; zero disables caching
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.core = append(c.core, ucp.WithCacheTTL(ttl))
	}
}

// WithSchemaValidation enables JSON Schema validation of wire payloads
func WithSchemaValidation(enabled bool) ClientOption {
	return func(c *clientConfig) {
		c.core = append(c.core, ucp.WithSchemaValidation(enabled))
	}
}

// NewClient creates a UCP client over net/http.
func NewClient(opts ...ClientOption) *ucp.Client {
	cfg := &clientConfig{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{}
	}

	core := append([]ucp.ClientOption{
		ucp.WithFetcher(&fetcher{client: hc, timeout: cfg.timeout}),
	}, cfg.core...)

	return ucp.NewClient(core...)
}

// fetcher implements ucp.Fetcher over a standard HTTP client. Context
// cancellation aborts the in-flight request; no partial result survives.
type fetcher struct {
	client  *http.Client
	timeout time.Duration
}

func (f *fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, int, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response from %s: %w", rawURL, err)
	}

	return body, resp.StatusCode, nil
}
