package ucp

// DiscoveryDocument is the JSON descriptor a merchant publishes at
// WellKnownPath. It is rendered fresh per request from immutable
// configuration and is never mutated after construction.
type DiscoveryDocument struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Services        map[string]Service `json:"services"`
	Capabilities    []Capability       `json:"capabilities"`
	Merchant        Merchant           `json:"merchant"`
}

// Service is a transport binding for a capability. RESTEndpoint must be an
// absolute URL; search routes are resolved relative to it.
type Service struct {
	Version      string `json:"version"`
	SpecURL      string `json:"specUrl,omitempty"`
	RESTEndpoint string `json:"restEndpoint"`
	SchemaURL    string `json:"schemaUrl,omitempty"`
}

// Capability declares a named, versioned unit of protocol functionality the
// merchant supports. Every capability a client references must have a
// matching Services entry.
type Capability struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	SpecURL   string `json:"specUrl,omitempty"`
	SchemaURL string `json:"schemaUrl,omitempty"`
}

// Merchant identifies the publisher of a discovery document.
type Merchant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BaseURL string `json:"baseUrl"`
}

// Product is a transient read copy of a catalog entry. The merchant-side
// catalog owns the canonical record.
type Product struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Price is the price in cents (minor currency units). Floating-point
	// prices never cross the protocol boundary; display conversion is the
	// consumer's responsibility.
	Price int64 `json:"price"`

	ImageURL    string `json:"imageUrl,omitempty"`
	Description string `json:"description,omitempty"`
}

// SearchQuery is a product-search request. An empty Query matches the whole
// catalog. Limit zero means "use the responder default".
type SearchQuery struct {
	Query string
	Limit int
}

// SearchResult is the wire shape of a search response. Total counts all
// matches before truncation by the limit, so Total >= len(Items). An empty
// Items with Total zero means "no matches" and is not an error.
type SearchResult struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}
