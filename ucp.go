// Package ucp implements the Universal Commerce Protocol: merchants publish
// a discovery document at a well-known path describing their capabilities
// and service endpoints, and consumers resolve those capabilities to issue
// product searches.
//
// The package is transport-agnostic. The http subpackage binds it to
// net/http, pkg/gin and pkg/echo mount the merchant routes on those
// frameworks, and the mcp subpackage exposes the same surface as Model
// Context Protocol tools.
//
// All prices are integer minor currency units (cents). Floating-point
// prices never cross the protocol boundary.
package ucp

// ProtocolVersion is the protocol revision served in discovery documents.
const ProtocolVersion = "2026-01-11"

// WellKnownPath is where merchants publish their discovery document.
const WellKnownPath = "/.well-known/ucp"

// Capability names served by this implementation.
const (
	CapabilitySearch   = "dev.ucp.shopping.search"
	CapabilityCheckout = "dev.ucp.shopping.checkout"
)

// SearchPath is the search route relative to a service's REST endpoint.
const SearchPath = "/products/search"

const (
	// DefaultSearchLimit applies when a search request omits a limit.
	DefaultSearchLimit = 10

	// DefaultMaxLimit is the bound oversized limits clamp to.
	DefaultMaxLimit = 100
)
