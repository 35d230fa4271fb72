package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	ucp "github.com/ucp-foundation/ucp/go"
)

// Tool names registered on the merchant-side MCP server.
const (
	ToolGetDiscovery   = "get_discovery"
	ToolSearchProducts = "search_products"
)

var searchInputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {"type": "string", "description": "Search text matched against product titles and descriptions. Empty matches everything."},
		"limit": {"type": "integer", "description": "Maximum number of items to return."}
	}
}`)

// NewServer creates an MCP server exposing the responder's discovery and
// search surface as tools.
func NewServer(responder *ucp.Responder, name, version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    name,
		Version: version,
	}, nil)
	AddTools(server, responder)
	return server
}

// AddTools registers the UCP tools on an existing MCP server, e.g. one
// that already carries unrelated tools.
func AddTools(server *mcpsdk.Server, responder *ucp.Responder) {
	server.AddTool(&mcpsdk.Tool{
		Name:        ToolGetDiscovery,
		Description: "Get the merchant's UCP discovery document: protocol version, capabilities, and service endpoints.",
		InputSchema: json.RawMessage(`{"type": "object"}`),
	}, discoveryHandler(responder))

	server.AddTool(&mcpsdk.Tool{
		Name:        ToolSearchProducts,
		Description: "Search the merchant's product catalog. Prices are integer minor units (e.g. cents).",
		InputSchema: searchInputSchema,
	}, searchHandler(responder))
}

type searchArguments struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func discoveryHandler(responder *ucp.Responder) func(context.Context, *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		doc := responder.DiscoveryDocument()
		if err := ucp.ValidateDiscoveryDocument(doc); err != nil {
			return errorResult(ucp.NewProtocolError(ucp.ErrCodeInternal,
				"discovery configuration is invalid", nil)), nil
		}
		return jsonResult(doc)
	}
}

func searchHandler(responder *ucp.Responder) func(context.Context, *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args searchArguments
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(ucp.NewProtocolError(ucp.ErrCodeInvalidParameter,
					fmt.Sprintf("malformed arguments: %v", err), nil)), nil
			}
		}

		result, err := responder.Search(ctx, ucp.SearchQuery{Query: args.Query, Limit: args.Limit})
		if err != nil {
			pe, ok := err.(*ucp.ProtocolError)
			if !ok {
				pe = ucp.NewProtocolError(ucp.ErrCodeInternal, "search failed", nil)
			}
			return errorResult(pe), nil
		}

		return jsonResult(result)
	}
}

// jsonResult carries the payload both as text and structured content.
func jsonResult(v interface{}) (*mcpsdk.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return &mcpsdk.CallToolResult{
		Content:           []mcpsdk.Content{&mcpsdk.TextContent{Text: string(b)}},
		StructuredContent: v,
	}, nil
}

// errorResult reports a protocol error as a tool-level error, never as a
// protocol-level failure: the call itself succeeded.
func errorResult(pe *ucp.ProtocolError) *mcpsdk.CallToolResult {
	b, _ := json.Marshal(pe)
	return &mcpsdk.CallToolResult{
		Content:           []mcpsdk.Content{&mcpsdk.TextContent{Text: string(b)}},
		StructuredContent: pe,
		IsError:           true,
	}
}
