package ucp

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateDiscoveryDocument checks the structural invariants of a discovery
// document: required fields present, capability name+version pairs unique,
// and every capability backed by a services entry with an absolute REST
// endpoint.
func ValidateDiscoveryDocument(doc DiscoveryDocument) error {
	if doc.ProtocolVersion == "" {
		return fmt.Errorf("missing required field: protocolVersion")
	}
	if doc.Merchant.ID == "" {
		return fmt.Errorf("missing required field: merchant.id")
	}
	if doc.Services == nil {
		return fmt.Errorf("missing required field: services")
	}
	if doc.Capabilities == nil {
		return fmt.Errorf("missing required field: capabilities")
	}

	seen := make(map[string]bool, len(doc.Capabilities))
	for _, cap := range doc.Capabilities {
		if cap.Name == "" {
			return fmt.Errorf("capability with empty name")
		}
		key := cap.Name + "@" + cap.Version
		if seen[key] {
			return fmt.Errorf("duplicate capability %s", key)
		}
		seen[key] = true

		svc, ok := doc.Services[cap.Name]
		if !ok {
			return fmt.Errorf("capability %s has no services entry", cap.Name)
		}
		if err := validateAbsoluteURL(svc.RESTEndpoint); err != nil {
			return fmt.Errorf("capability %s: %w", cap.Name, err)
		}
	}

	return nil
}

// ValidateSearchResult checks the structural invariants of a search result.
// A malformed product rejects the whole result: partial catalogs are more
// dangerous than a visible failure in a commerce flow.
func ValidateSearchResult(result SearchResult) error {
	if result.Total < 0 {
		return fmt.Errorf("total must be non-negative, got %d", result.Total)
	}
	if result.Total < len(result.Items) {
		return fmt.Errorf("total %d is less than item count %d", result.Total, len(result.Items))
	}
	for i, p := range result.Items {
		if err := validateProduct(p); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func validateProduct(p Product) error {
	if p.ID == "" {
		return fmt.Errorf("missing required field: id")
	}
	if p.Title == "" {
		return fmt.Errorf("missing required field: title")
	}
	if p.Price < 0 {
		return fmt.Errorf("price must be non-negative, got %d", p.Price)
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid restEndpoint %q: %w", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("restEndpoint %q is not an absolute URL", raw)
	}
	return nil
}

// MatchProduct reports whether a product matches a free-text query using
// case-insensitive substring matching over title and description. An empty
// query matches everything.
func MatchProduct(p Product, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	return strings.Contains(strings.ToLower(p.Description), q)
}
