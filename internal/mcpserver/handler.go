package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/phobologic/rustsym/internal/engine"
	"github.com/phobologic/rustsym/internal/model"
)

// Handler adapts MCP tool calls to engine queries.
type Handler struct {
	engine *engine.Engine
}

// NewHandler returns a Handler serving e.
func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// SymbolEntry is the JSON shape of a symbol in tool results. Line is 0-based.
type SymbolEntry struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	LSPKind   int    `json:"lspKind"`
	Container string `json:"container,omitempty"`
	Path      string `json:"path"`
	URI       string `json:"uri"`
	Line      int    `json:"line"`
}

// CompletionEntry is the JSON shape of a completion item.
type CompletionEntry struct {
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

func toEntries(symbols []model.Symbol) []SymbolEntry {
	entries := make([]SymbolEntry, len(symbols))
	for i := range symbols {
		s := &symbols[i]
		entries[i] = SymbolEntry{
			Name:      s.Name,
			Kind:      string(s.Kind),
			LSPKind:   s.Kind.LSP(),
			Container: s.Container,
			Path:      s.Location.File,
			URI:       s.Location.URI(),
			Line:      s.Location.Line,
		}
	}
	return entries
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// WorkspaceSymbols handles the workspace_symbols tool.
func (h *Handler) WorkspaceSymbols(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	return jsonResult(toEntries(h.engine.WorkspaceSymbols(query)))
}

// DocumentSymbols handles the document_symbols tool.
func (h *Handler) DocumentSymbols(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError("file is required"), nil
	}
	symbols, ok := h.engine.DocumentSymbols(file)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no data for %s", file)), nil
	}
	return jsonResult(toEntries(symbols))
}

// Complete handles the complete tool.
func (h *Handler) Complete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError("file is required"), nil
	}
	items, ok := h.engine.Complete(file)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no data for %s", file)), nil
	}
	entries := make([]CompletionEntry, len(items))
	for i, it := range items {
		entries[i] = CompletionEntry{Label: it.Label, Detail: it.Detail}
	}
	return jsonResult(entries)
}

// Lookup handles the lookup_symbol tool.
func (h *Handler) Lookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	return jsonResult(toEntries(h.engine.Lookup(name)))
}

// Reindex handles the reindex tool.
func (h *Handler) Reindex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := h.engine.Reindex(ctx)
	return jsonResult(map[string]any{
		"roots":       stats.Roots,
		"files":       stats.Files,
		"symbols":     stats.Symbols,
		"duration_ms": stats.Duration.Milliseconds(),
		"indexed_at":  stats.IndexedAt,
	})
}
