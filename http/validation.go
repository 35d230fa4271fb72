package http

import (
	"fmt"
	"net/url"
	"strconv"

	ucp "github.com/ucp-foundation/ucp/go"
)

// ParseSearchQuery validates the q/limit query parameters of a search
// request. An absent limit maps to the responder default; a present but
// non-integer or non-positive limit is a 400, never a silent clamp.
// Oversized positive limits are left for the responder to clamp.
func ParseSearchQuery(values url.Values) (ucp.SearchQuery, error) {
	query := ucp.SearchQuery{Query: values.Get("q")}

	raw := values.Get("limit")
	if raw == "" {
		return query, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return ucp.SearchQuery{}, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			fmt.Sprintf("limit must be an integer, got %q", raw),
			map[string]interface{}{"parameter": "limit"})
	}
	if limit <= 0 {
		return ucp.SearchQuery{}, ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
			fmt.Sprintf("limit must be a positive integer, got %d", limit),
			map[string]interface{}{"parameter": "limit"})
	}

	query.Limit = limit
	return query, nil
}
