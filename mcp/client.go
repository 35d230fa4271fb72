package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	ucp "github.com/ucp-foundation/ucp/go"
)

// ToolCaller is the slice of an MCP session the client needs. It is
// satisfied by *mcpsdk.ClientSession.
type ToolCaller interface {
	CallTool(ctx context.Context, params *mcpsdk.CallToolParams) (*mcpsdk.CallToolResult, error)
}

// Client resolves UCP operations over a connected MCP session. It mirrors
// the HTTP client's surface and error codes, so callers can swap the
// transport without changing their handling.
type Client struct {
	caller ToolCaller
}

// NewClient wraps a connected tool caller.
func NewClient(caller ToolCaller) *Client {
	return &Client{caller: caller}
}

// Discover fetches the merchant's discovery document via the
// get_discovery tool.
func (c *Client) Discover(ctx context.Context) (ucp.DiscoveryDocument, error) {
	result, err := c.caller.CallTool(ctx, &mcpsdk.CallToolParams{Name: ToolGetDiscovery})
	if err != nil {
		return ucp.DiscoveryDocument{}, ucp.NewProtocolError(ucp.ErrCodeDiscoveryUnavailable,
			fmt.Sprintf("calling %s: %v", ToolGetDiscovery, err), nil)
	}
	if result.IsError {
		return ucp.DiscoveryDocument{}, toolError(result, ucp.ErrCodeDiscoveryUnavailable)
	}

	var doc ucp.DiscoveryDocument
	if err := decodePayload(result, &doc); err != nil {
		return ucp.DiscoveryDocument{}, ucp.NewProtocolError(ucp.ErrCodeDiscoveryUnavailable,
			fmt.Sprintf("malformed discovery payload: %v", err), nil)
	}
	if err := ucp.ValidateDiscoveryDocument(doc); err != nil {
		return ucp.DiscoveryDocument{}, ucp.NewProtocolError(ucp.ErrCodeDiscoveryUnavailable,
			fmt.Sprintf("invalid discovery document: %v", err), nil)
	}
	return doc, nil
}

// Search runs a product search via the search_products tool. A malformed
// payload rejects the whole result; there are no partial results.
func (c *Client) Search(ctx context.Context, query ucp.SearchQuery) (ucp.SearchResult, error) {
	args := map[string]interface{}{}
	if query.Query != "" {
		args["query"] = query.Query
	}
	if query.Limit != 0 {
		args["limit"] = query.Limit
	}

	result, err := c.caller.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      ToolSearchProducts,
		Arguments: args,
	})
	if err != nil {
		return ucp.SearchResult{}, ucp.NewProtocolError(ucp.ErrCodeSearchRequestFailed,
			fmt.Sprintf("calling %s: %v", ToolSearchProducts, err), nil)
	}
	if result.IsError {
		return ucp.SearchResult{}, toolError(result, ucp.ErrCodeSearchRequestFailed)
	}

	var sr ucp.SearchResult
	if err := decodePayload(result, &sr); err != nil {
		return ucp.SearchResult{}, ucp.NewProtocolError(ucp.ErrCodeSearchResponseInvalid,
			fmt.Sprintf("malformed search payload: %v", err), nil)
	}
	if err := ucp.ValidateSearchResult(sr); err != nil {
		return ucp.SearchResult{}, ucp.NewProtocolError(ucp.ErrCodeSearchResponseInvalid,
			fmt.Sprintf("invalid search result: %v", err), nil)
	}
	if sr.Items == nil {
		sr.Items = []ucp.Product{}
	}
	return sr, nil
}

// decodePayload extracts the JSON payload from a tool result, preferring
// structured content over the text rendering.
func decodePayload(result *mcpsdk.CallToolResult, v interface{}) error {
	if result.StructuredContent != nil {
		b, err := json.Marshal(result.StructuredContent)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, v)
	}

	for _, item := range result.Content {
		if text, ok := item.(*mcpsdk.TextContent); ok {
			return json.Unmarshal([]byte(text.Text), v)
		}
	}
	return fmt.Errorf("tool result carries no payload")
}

// toolError recovers the merchant's protocol error from a tool-level
// error result, falling back to the given code.
func toolError(result *mcpsdk.CallToolResult, fallbackCode string) error {
	var pe ucp.ProtocolError
	if err := decodePayload(result, &pe); err == nil && pe.Code != "" {
		return &pe
	}

	msg := "tool reported an error"
	for _, item := range result.Content {
		if text, ok := item.(*mcpsdk.TextContent); ok && text.Text != "" {
			msg = text.Text
			break
		}
	}
	return ucp.NewProtocolError(fallbackCode, msg, nil)
}
