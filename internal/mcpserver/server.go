// Package mcpserver exposes a rustsym engine as MCP tools over stdio.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New builds an MCP server whose tools delegate to handler.
func New(handler *Handler, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"rustsym",
		version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("workspace_symbols",
		mcp.WithDescription("Search Rust declarations across the workspace and toolchain standard library. Matches names by prefix, substring, or case-insensitive substring; workspace results rank first, shorter names earlier. An empty query lists every symbol."),
		mcp.WithString("query",
			mcp.Description("Name fragment to search for"),
		),
	), handler.WorkspaceSymbols)

	s.AddTool(mcp.NewTool("document_symbols",
		mcp.WithDescription("List the declarations of one indexed Rust file in line order."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File path (absolute, workspace-relative, or file:// URI)"),
		),
	), handler.DocumentSymbols)

	s.AddTool(mcp.NewTool("complete",
		mcp.WithDescription("Completion labels for a file: every symbol declared in it."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File path (absolute, workspace-relative, or file:// URI)"),
		),
	), handler.Complete)

	s.AddTool(mcp.NewTool("lookup_symbol",
		mcp.WithDescription("Find every declaration with exactly this name."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Exact symbol name"),
		),
	), handler.Lookup)

	s.AddTool(mcp.NewTool("reindex",
		mcp.WithDescription("Rebuild the symbol index from disk."),
	), handler.Reindex)

	return s
}
