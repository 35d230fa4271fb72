// Package mcp binds the UCP contract to the Model Context Protocol using
// the official Go MCP SDK (github.com/modelcontextprotocol/go-sdk/mcp).
//
// The merchant side registers two tools on an mcpsdk.Server:
//
//	get_discovery    — returns the discovery document
//	search_products  — runs a product search (query, limit)
//
// Tool results carry the JSON payload both as text content and as
// structured content, so agent frameworks can consume either form.
//
// The consumer side wraps a connected tool caller (typically an
// *mcpsdk.ClientSession) and exposes the same Discover/Search surface as
// the HTTP client, with the same error codes:
//
//	session, err := mcpClient.Connect(ctx, transport, nil)
//	client := mcp.NewClient(session)
//	result, err := client.Search(ctx, ucp.SearchQuery{Query: "cookies"})
package mcp
