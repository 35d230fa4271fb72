package ucp

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Catalog is the merchant-side product store backing a Responder. Find
// returns every product matching the free-text query; an empty query
// returns the whole catalog. Implementations must be safe for concurrent
// use and must match case-insensitively (see MatchProduct).
type Catalog interface {
	Find(ctx context.Context, query string) ([]Product, error)
}

// ProductGetter is implemented by catalogs that support direct lookup by
// id. Checkout handlers use it to snapshot a product into a cart.
type ProductGetter interface {
	GetProduct(ctx context.Context, id string) (Product, bool, error)
}

// Responder implements the merchant side of the discovery and search
// contract. It holds immutable configuration and renders the discovery
// document fresh per call; search execution is stateless beyond the catalog.
type Responder struct {
	merchant     Merchant
	catalog      Catalog
	defaultLimit int
	maxLimit     int
	specURL      string
	schemaURL    string
}

// ResponderOption configures the responder
type ResponderOption func(*Responder)

// WithMerchant sets the merchant identity served in the discovery document
func WithMerchant(m Merchant) ResponderOption {
	return func(r *Responder) {
		r.merchant = m
	}
}

// WithCatalog sets the product catalog backing search
func WithCatalog(c Catalog) ResponderOption {
	return func(r *Responder) {
		r.catalog = c
	}
}

// WithDefaultLimit sets the limit applied when a search request omits one
func WithDefaultLimit(n int) ResponderOption {
	return func(r *Responder) {
		if n > 0 {
			r.defaultLimit = n
		}
	}
}

// WithMaxLimit sets the upper bound out-of-range limits clamp to
func WithMaxLimit(n int) ResponderOption {
	return func(r *Responder) {
		if n > 0 {
			r.maxLimit = n
		}
	}
}

// WithSpecURLs sets the spec and schema URLs advertised for capabilities
func WithSpecURLs(specURL, schemaURL string) ResponderOption {
	return func(r *Responder) {
		r.specURL = specURL
		r.schemaURL = schemaURL
	}
}

// NewResponder creates a merchant-side responder
func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{
		defaultLimit: DefaultSearchLimit,
		maxLimit:     DefaultMaxLimit,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.defaultLimit > r.maxLimit {
		r.defaultLimit = r.maxLimit
	}

	return r
}

// Merchant returns the configured merchant identity.
func (r *Responder) Merchant() Merchant {
	return r.merchant
}

// DefaultLimit returns the limit applied when a search omits one.
func (r *Responder) DefaultLimit() int {
	return r.defaultLimit
}

// MaxLimit returns the clamp bound for oversized limits.
func (r *Responder) MaxLimit() int {
	return r.maxLimit
}

// DiscoveryDocument renders the discovery document. Built fresh per call so
// callers can serve it even with an empty catalog; serving it must never
// depend on catalog state.
func (r *Responder) DiscoveryDocument() DiscoveryDocument {
	endpoint := strings.TrimSuffix(r.merchant.BaseURL, "/") + "/ucp/v1"

	service := Service{
		Version:      "1.0",
		SpecURL:      r.specURL,
		RESTEndpoint: endpoint,
		SchemaURL:    r.schemaURL,
	}

	return DiscoveryDocument{
		ProtocolVersion: ProtocolVersion,
		Services: map[string]Service{
			CapabilitySearch:   service,
			CapabilityCheckout: service,
		},
		Capabilities: []Capability{
			{Name: CapabilitySearch, Version: "1.0", SpecURL: r.specURL, SchemaURL: r.schemaURL},
			{Name: CapabilityCheckout, Version: "1.0", SpecURL: r.specURL, SchemaURL: r.schemaURL},
		},
		Merchant: r.merchant,
	}
}

// Search executes a product search against the catalog. Total reflects the
// full match count before truncation; items are ordered by id ascending so
// identical requests against an unchanged catalog return identical results.
func (r *Responder) Search(ctx context.Context, query SearchQuery) (SearchResult, error) {
	if r.catalog == nil {
		return SearchResult{}, NewProtocolError(ErrCodeInternal, "responder has no catalog configured", nil)
	}

	limit, err := r.resolveLimit(query.Limit)
	if err != nil {
		return SearchResult{}, err
	}

	matches, err := r.catalog.Find(ctx, query.Query)
	if err != nil {
		return SearchResult{}, NewProtocolError(ErrCodeInternal, fmt.Sprintf("catalog lookup failed: %v", err), nil)
	}

	// Deterministic ordering: id ascending as the tie-break for everything.
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ID < matches[j].ID
	})

	total := len(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []Product{}
	}

	return SearchResult{Items: matches, Total: total}, nil
}

// resolveLimit applies the default and clamps oversized values. Explicit
// zero or negative limits are rejected rather than clamped; "absent" is
// signalled by the zero value only through SearchQuery construction at the
// transport boundary, which maps absent to the responder default itself.
func (r *Responder) resolveLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return r.defaultLimit, nil
	case limit < 0:
		return 0, NewProtocolError(ErrCodeInvalidParameter,
			fmt.Sprintf("limit must be a positive integer, got %d", limit),
			map[string]interface{}{"parameter": "limit"})
	case limit > r.maxLimit:
		return r.maxLimit, nil
	default:
		return limit, nil
	}
}
