package ucp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Fetcher performs a single GET against an absolute URL and returns the
// response body and status code. The http subpackage provides the standard
// implementation; the interface keeps the client core transport-free and
// testable without a network.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (body []byte, status int, err error)
}

// Client implements the consumer side of the discovery and search contract.
// Each call is a single stateless request/response; the only shared state is
// the optional discovery cache, which supports concurrent readers with
// last-writer-wins refresh.
type Client struct {
	mu      sync.RWMutex
	cache   map[string]cacheEntry // keyed by merchant base URL
	fetcher Fetcher

	cacheTTL       time.Duration
	validateSchema bool
}

type cacheEntry struct {
	doc     DiscoveryDocument
	expires time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithFetcher sets the transport used for protocol GETs
func WithFetcher(f Fetcher) ClientOption {
	return func(c *Client) {
		c.fetcher = f
	}
}

// WithCacheTTL bounds how long a discovery document is reused before being
// fetched again. Zero disables caching entirely.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithSchemaValidation enables JSON Schema validation of wire payloads in
// addition to the structural checks.
func WithSchemaValidation(enabled bool) ClientOption {
	return func(c *Client) {
		c.validateSchema = enabled
	}
}

// NewClient creates a consumer-side client. A fetcher must be supplied via
// WithFetcher (the http subpackage wires one up automatically).
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		cache:    make(map[string]cacheEntry),
		cacheTTL: 5 * time.Minute,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Discover fetches and validates a merchant's discovery document. Single
// attempt, no retry: the caller owns retry policy. The cache is not
// consulted; use Search for cached resolution.
func (c *Client) Discover(ctx context.Context, baseURL string) (DiscoveryDocument, error) {
	if c.fetcher == nil {
		return DiscoveryDocument{}, NewProtocolError(ErrCodeInternal, "client has no fetcher configured", nil)
	}

	wellKnown := trimSlash(baseURL) + WellKnownPath
	body, status, err := c.fetcher.Fetch(ctx, wellKnown)
	if err != nil {
		return DiscoveryDocument{}, NewProtocolError(ErrCodeDiscoveryUnavailable,
			fmt.Sprintf("discovery request to %s failed: %v", wellKnown, err), nil)
	}
	if status != 200 {
		return DiscoveryDocument{}, NewProtocolError(ErrCodeDiscoveryUnavailable,
			fmt.Sprintf("discovery request to %s returned status %d", wellKnown, status),
			map[string]interface{}{"status": status})
	}

	if c.validateSchema {
		if err := ValidateDiscoveryJSON(body); err != nil {
			return DiscoveryDocument{}, err
		}
	}

	var doc DiscoveryDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return DiscoveryDocument{}, NewProtocolError(ErrCodeDiscoveryUnavailable,
			fmt.Sprintf("malformed discovery document: %v", err), nil)
	}
	if err := ValidateDiscoveryDocument(doc); err != nil {
		return DiscoveryDocument{}, NewProtocolError(ErrCodeDiscoveryUnavailable,
			fmt.Sprintf("invalid discovery document: %v", err), nil)
	}

	return doc, nil
}

// ResolveEndpoint returns the REST endpoint serving the named capability.
func ResolveEndpoint(doc DiscoveryDocument, capability string) (string, error) {
	declared := false
	for _, cap := range doc.Capabilities {
		if cap.Name == capability {
			declared = true
			break
		}
	}
	svc, ok := doc.Services[capability]
	if !declared || !ok {
		return "", NewProtocolError(ErrCodeCapabilityNotFound,
			fmt.Sprintf("merchant does not support capability %s", capability), nil)
	}
	return svc.RESTEndpoint, nil
}

// Search resolves the merchant's search endpoint via discovery (cached when
// enabled) and executes a product search. A stale cached endpoint triggers
// exactly one re-discovery before the failure is surfaced.
func (c *Client) Search(ctx context.Context, baseURL string, query SearchQuery) (SearchResult, error) {
	doc, cached, err := c.discoverCached(ctx, baseURL)
	if err != nil {
		return SearchResult{}, err
	}

	result, err := c.searchAgainst(ctx, doc, query)
	if err == nil {
		return result, nil
	}

	// A capability miss against a cached document may just mean the merchant
	// changed shape since we cached it. Invalidate and retry once.
	if cached && ErrorCode(err) == ErrCodeCapabilityNotFound {
		c.InvalidateDiscovery(baseURL)
		doc, _, derr := c.discoverCached(ctx, baseURL)
		if derr != nil {
			return SearchResult{}, derr
		}
		return c.searchAgainst(ctx, doc, query)
	}

	return SearchResult{}, err
}

func (c *Client) searchAgainst(ctx context.Context, doc DiscoveryDocument, query SearchQuery) (SearchResult, error) {
	endpoint, err := ResolveEndpoint(doc, CapabilitySearch)
	if err != nil {
		return SearchResult{}, err
	}

	params := url.Values{}
	if query.Query != "" {
		params.Set("q", query.Query)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	searchURL := trimSlash(endpoint) + SearchPath
	if encoded := params.Encode(); encoded != "" {
		searchURL += "?" + encoded
	}

	body, status, err := c.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return SearchResult{}, NewProtocolError(ErrCodeSearchRequestFailed,
			fmt.Sprintf("search request to %s failed: %v", searchURL, err), nil)
	}

	switch {
	case status == 200:
		// fall through to decoding
	case status == 404:
		// The discovered endpoint no longer serves the capability.
		return SearchResult{}, NewProtocolError(ErrCodeCapabilityNotFound,
			fmt.Sprintf("search endpoint %s not found", searchURL),
			map[string]interface{}{"status": status})
	default:
		details := map[string]interface{}{"status": status}
		var wireErr ProtocolError
		if jsonErr := json.Unmarshal(body, &wireErr); jsonErr == nil && wireErr.Code != "" {
			details["code"] = wireErr.Code
			details["message"] = wireErr.Message
		}
		return SearchResult{}, NewProtocolError(ErrCodeSearchRequestFailed,
			fmt.Sprintf("search request to %s returned status %d", searchURL, status), details)
	}

	if c.validateSchema {
		if err := ValidateSearchResultJSON(body); err != nil {
			return SearchResult{}, err
		}
	}

	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return SearchResult{}, NewProtocolError(ErrCodeSearchResponseInvalid,
			fmt.Sprintf("malformed search response: %v", err), nil)
	}
	if err := ValidateSearchResult(result); err != nil {
		// Reject the whole result rather than returning partial items.
		return SearchResult{}, NewProtocolError(ErrCodeSearchResponseInvalid,
			fmt.Sprintf("invalid search response: %v", err), nil)
	}

	return result, nil
}

// discoverCached returns the cached document for baseURL when fresh,
// fetching otherwise. Reads never block behind a refresh: a caller that
// misses fetches outside the lock and the last writer wins.
func (c *Client) discoverCached(ctx context.Context, baseURL string) (DiscoveryDocument, bool, error) {
	if c.cacheTTL <= 0 {
		doc, err := c.Discover(ctx, baseURL)
		return doc, false, err
	}

	c.mu.RLock()
	entry, ok := c.cache[baseURL]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.doc, true, nil
	}

	doc, err := c.Discover(ctx, baseURL)
	if err != nil {
		return DiscoveryDocument{}, false, err
	}

	c.mu.Lock()
	c.cache[baseURL] = cacheEntry{doc: doc, expires: time.Now().Add(c.cacheTTL)}
	c.mu.Unlock()

	return doc, false, nil
}

// InvalidateDiscovery drops the cached discovery document for baseURL.
func (c *Client) InvalidateDiscovery(baseURL string) {
	c.mu.Lock()
	delete(c.cache, baseURL)
	c.mu.Unlock()
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
